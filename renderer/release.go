package renderer

import (
	"log/slog"
)

type release struct {
	name string
	fn   func()
}

// releaseStack owns teardown order. Every GPU object is pushed right after
// it is created, so unwinding pops them in exact reverse creation order.
// Entries for objects that get rebuilt (swapchain, framebuffers, command
// buffers) release whatever the renderer holds at unwind time.
type releaseStack struct {
	logger  *slog.Logger
	entries []release
}

func (s *releaseStack) push(name string, fn func()) {
	s.entries = append(s.entries, release{name: name, fn: fn})
}

// unwind runs every release once. Calling it again is a no-op.
func (s *releaseStack) unwind() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		s.logger.Debug("destroying", slog.String("object", entry.name))
		entry.fn()
	}
	s.entries = nil
}

func (s *releaseStack) len() int {
	return len(s.entries)
}
