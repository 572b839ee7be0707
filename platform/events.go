package platform

import (
	"github.com/veandco/go-sdl2/sdl"
)

type drawableSizer func() (int32, int32)

// translate maps one native event onto a Message. Window size changes report
// the drawable size rather than the window size so high-dpi surfaces get
// their real pixel extent.
func translate(event sdl.Event, drawableSize drawableSizer) (Message, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Quit{}, true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			return Quit{}, true
		case sdl.WINDOWEVENT_MINIMIZED:
			return Resize{}, true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_SIZE_CHANGED:
			w, h := drawableSize()
			return Resize{Width: int(w), Height: int(h)}, true
		}
	case *sdl.KeyboardEvent:
		switch e.Type {
		case sdl.KEYDOWN:
			return KeyPressed{Code: int(e.Keysym.Sym)}, true
		case sdl.KEYUP:
			return KeyReleased{Code: int(e.Keysym.Sym)}, true
		}
	case *sdl.MouseMotionEvent:
		return MouseMoved{X: int(e.X), Y: int(e.Y)}, true
	}

	return nil, false
}
