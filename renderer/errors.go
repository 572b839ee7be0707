package renderer

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrFatalInit marks every error returned by Initialize. The renderer
	// cannot be used after it.
	ErrFatalInit = errors.New("renderer initialization failed")

	// ErrNoSuitableDevice means no physical device exposes a queue family
	// that can both render and present to the surface.
	ErrNoSuitableDevice = errors.New("no suitable GPU found")

	// ErrDriver marks a driver result the renderer has no recovery for.
	// The GPU state is unknown afterwards; callers should shut down.
	ErrDriver = errors.New("unexpected driver error")

	// ErrClosed is returned when a frame is requested after Shutdown.
	ErrClosed = errors.New("renderer is shut down")
)

func driverFailure(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrDriver)
}
