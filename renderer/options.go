package renderer

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// DefaultInFlightCount is the number of command buffers cycled through
// when Options.InFlightCount is zero.
const DefaultInFlightCount = 2

// Options configures a Renderer. It is read once by Initialize.
type Options struct {
	// Validation enables VK_LAYER_KHRONOS_validation and routes its messages
	// to Logger.
	Validation bool
	// Vsync selects FIFO presentation. Without it the renderer prefers
	// mailbox, then immediate, and falls back to FIFO.
	Vsync bool

	InFlightCount   int
	ClearColor      [4]float32
	ApplicationName string

	// Logger receives lifecycle and validation messages. Nil discards them.
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		InFlightCount:   DefaultInFlightCount,
		ClearColor:      [4]float32{0.0, 0.2, 0.4, 1.0},
		ApplicationName: "Pegasus",
	}
}

func (o Options) normalize() (Options, error) {
	if o.InFlightCount == 0 {
		o.InFlightCount = DefaultInFlightCount
	}
	if o.InFlightCount < 0 {
		return o, errors.Newf("in-flight count must be positive, got %d", o.InFlightCount)
	}
	if o.ApplicationName == "" {
		o.ApplicationName = "Pegasus"
	}
	if o.Logger == nil {
		o.Logger = slog.New(nopHandler{})
	}
	return o, nil
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
