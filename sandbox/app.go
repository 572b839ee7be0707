package main

import (
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"
)

type resizer interface {
	NotifyResize(width, height int) error
}

// app routes platform messages to the renderer. The first error a handler
// hits is kept and ends the loop.
type app struct {
	logger   *slog.Logger
	renderer resizer
	quit     bool
	err      error
}

func (a *app) OnQuit() {
	a.quit = true
}

func (a *app) OnResize(width, height int) {
	if a.err != nil {
		return
	}
	a.logger.Debug("window resized", slog.Int("width", width), slog.Int("height", height))
	a.err = a.renderer.NotifyResize(width, height)
}

func (a *app) OnKeyPressed(code int) {
	if sdl.Keycode(code) == sdl.K_ESCAPE {
		a.quit = true
	}
}

func (a *app) OnKeyReleased(code int) {}

func (a *app) OnMouseMoved(x, y int) {}

func (a *app) running() bool {
	return !a.quit && a.err == nil
}

func windowTitle(name, device string, fps int) string {
	return fmt.Sprintf("%s - %s - %d fps", name, device, fps)
}
