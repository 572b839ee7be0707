package platform

// Message is one of the closed set of events the platform layer emits:
// Quit, Resize, KeyPressed, KeyReleased and MouseMoved.
type Message interface {
	isMessage()
}

type Quit struct{}

// Resize carries the new drawable size in pixels. A zero dimension means the
// window was minimized.
type Resize struct {
	Width, Height int
}

type KeyPressed struct {
	Code int
}

type KeyReleased struct {
	Code int
}

type MouseMoved struct {
	X, Y int
}

func (Quit) isMessage()        {}
func (Resize) isMessage()      {}
func (KeyPressed) isMessage()  {}
func (KeyReleased) isMessage() {}
func (MouseMoved) isMessage()  {}

// Handler receives one call per message variant.
type Handler interface {
	OnQuit()
	OnResize(width, height int)
	OnKeyPressed(code int)
	OnKeyReleased(code int)
	OnMouseMoved(x, y int)
}

// Dispatch routes msg to the matching Handler method and reports whether
// the message was Quit.
func Dispatch(msg Message, h Handler) bool {
	switch m := msg.(type) {
	case Quit:
		h.OnQuit()
		return true
	case Resize:
		h.OnResize(m.Width, m.Height)
	case KeyPressed:
		h.OnKeyPressed(m.Code)
	case KeyReleased:
		h.OnKeyReleased(m.Code)
	case MouseMoved:
		h.OnMouseMoved(m.X, m.Y)
	}

	return false
}
