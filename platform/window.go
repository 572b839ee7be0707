package platform

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
)

// Window is an SDL window that can host a Vulkan surface. All methods must
// be called from the thread that called Open.
type Window struct {
	window *sdl.Window
}

func Open(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl video")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{window: window}, nil
}

func (w *Window) InstanceProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *Window) CreateSurface(instance core1_0.Instance, surfaceDriver khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	surface, err := vkng_sdl2.CreateSurface(instance, surfaceDriver, w.window)
	if err != nil {
		return khr_surface.Surface{}, errors.Wrap(err, "create sdl vulkan surface")
	}

	return surface, nil
}

// DrawableSize is the size of the surface in pixels.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) SetTitle(title string) {
	w.window.SetTitle(title)
}

// Pump drains the native event queue.
func (w *Window) Pump() []Message {
	var messages []Message
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		msg, ok := translate(event, w.window.VulkanGetDrawableSize)
		if ok {
			messages = append(messages, msg)
		}
	}

	return messages
}

func (w *Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
