package renderer

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/pegasus-engine/pegasus/assets"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// Scene is the immutable content the renderer draws every frame.
type Scene struct {
	VertexShader   []uint32
	FragmentShader []uint32
	Geometry       assets.Geometry
}

// Renderer owns every GPU object. It is not safe for concurrent use; all
// methods must be called from the thread that owns the window.
type Renderer struct {
	opts   Options
	logger *slog.Logger

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	surfaceDriver  khr_surface.ExtensionDriver
	surface        khr_surface.Surface

	device       *GraphicsDevice
	swapchains   *swapchainManager
	swapchain    *Swapchain
	renderPass   core1_0.RenderPass
	framebuffers []core1_0.Framebuffer
	commands     *commandRing
	sync         *frameSync
	pipeline     *Pipeline
	geometry     *GeometryBuffer

	releases releaseStack
	resize   *resizeController
	frames   *frameLoop
	closed   bool
	// failed holds the first error DrawFrame or NotifyResize returned.
	// GPU state is unknown after it, so both keep returning it.
	failed error
}

// Initialize brings up the whole rendering stack for target at the given
// drawable size. Every error it returns is marked ErrFatalInit, and
// whatever was created before the failure has been released.
func Initialize(target PresentationTarget, width, height int, opts Options, scene Scene) (*Renderer, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, errors.Mark(err, ErrFatalInit)
	}

	if width <= 0 || height <= 0 {
		return nil, errors.Mark(errors.Newf("initial surface size %dx%d has no area", width, height), ErrFatalInit)
	}

	r := &Renderer{
		opts:     opts,
		logger:   opts.Logger,
		releases: releaseStack{logger: opts.Logger},
	}

	err = runStartup(r.startupSteps(target, core1_0.Extent2D{Width: width, Height: height}, scene), &r.releases)
	if err != nil {
		r.releases.unwind()
		return nil, errors.Mark(err, ErrFatalInit)
	}

	r.resize = newResizeController(r, core1_0.Extent2D{Width: width, Height: height}, r.swapchain.Extent, r.logger)
	r.frames = newFrameLoop(r, r.resize, opts.InFlightCount)
	return r, nil
}

// DrawFrame renders and presents one frame. It returns nil without
// touching the GPU while the surface has zero area. Out-of-date and
// suboptimal swapchains are rebuilt internally; any other driver failure
// is returned marked ErrDriver and leaves the renderer unusable.
func (r *Renderer) DrawFrame() error {
	if r.closed {
		return ErrClosed
	}
	if r.failed != nil {
		return r.failed
	}
	return r.fail(r.frames.draw())
}

// NotifyResize reports the new drawable size of the window. A zero width
// or height suspends rendering until a non-zero size arrives.
func (r *Renderer) NotifyResize(width, height int) error {
	if r.closed {
		return ErrClosed
	}
	if r.failed != nil {
		return r.failed
	}
	return r.fail(r.resize.notify(width, height))
}

func (r *Renderer) fail(err error) error {
	if err != nil {
		r.failed = errors.Wrap(err, "renderer stopped")
	}
	return err
}

// Shutdown waits for the GPU to finish and destroys every object in reverse
// creation order. It may be called more than once.
func (r *Renderer) Shutdown() {
	if r.closed {
		return
	}
	r.closed = true

	err := r.device.waitIdle()
	if err != nil {
		r.logger.Error("device did not go idle before shutdown", slog.Any("error", err))
	}

	r.releases.unwind()
	r.logger.Info("renderer shut down")
}

func (r *Renderer) DeviceName() string {
	return r.device.Properties.DeviceName
}

func (r *Renderer) Stats() Stats {
	return r.frames.stats()
}

// Extent is the size of the current swapchain images.
func (r *Renderer) Extent() (int, int) {
	return r.resize.extent.Width, r.resize.extent.Height
}

func (r *Renderer) Suspended() bool {
	return r.resize.suspended
}

func (r *Renderer) destroyFramebuffers() {
	destroyFramebuffers(r.device.Driver, r.framebuffers)
	r.framebuffers = nil
}

func (r *Renderer) rebuildSwapchain(extent core1_0.Extent2D) (core1_0.Extent2D, error) {
	err := r.device.waitIdle()
	if err != nil {
		return core1_0.Extent2D{}, err
	}

	r.destroyFramebuffers()

	swapchain, err := r.swapchains.CreateOrRecreate(extent, r.opts.Vsync, r.swapchain)
	if err != nil {
		return core1_0.Extent2D{}, driverFailure(err, "recreate swapchain")
	}
	r.swapchain = swapchain

	r.framebuffers, err = BuildFramebuffers(r.device.Driver, r.renderPass, r.swapchain.Images, r.swapchain.Extent)
	if err != nil {
		return core1_0.Extent2D{}, driverFailure(err, "rebuild framebuffers")
	}

	err = r.commands.Allocate(r.opts.InFlightCount)
	if err != nil {
		return core1_0.Extent2D{}, driverFailure(err, "reallocate command buffers")
	}

	err = r.device.waitIdle()
	if err != nil {
		return core1_0.Extent2D{}, err
	}

	return r.swapchain.Extent, nil
}

func (r *Renderer) acquireImage() (int, presentStatus, error) {
	imageIndex, res, err := r.swapchains.driver.AcquireNextImage(r.swapchain.Handle, common.NoTimeout, &r.sync.imageAvailable, nil)
	status, err := classify(res, err)
	if err != nil {
		return 0, status, driverFailure(err, "acquire swapchain image")
	}
	return imageIndex, status, nil
}

func (r *Renderer) recordCommands(slot, imageIndex int) error {
	if imageIndex < 0 || imageIndex >= len(r.framebuffers) {
		return errors.AssertionFailedf("acquired image %d but only %d framebuffers exist", imageIndex, len(r.framebuffers))
	}

	err := r.commands.Record(slot, frameRecording{
		renderPass:  r.renderPass,
		framebuffer: r.framebuffers[imageIndex],
		extent:      r.swapchain.Extent,
		clearColor:  r.opts.ClearColor,
		pipeline:    r.pipeline,
		geometry:    r.geometry,
	})
	if err != nil {
		return driverFailure(err, "record frame")
	}
	return nil
}

func (r *Renderer) submitCommands(slot int) error {
	_, err := r.device.Driver.QueueSubmit(r.device.Queue, nil,
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{r.sync.imageAvailable},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{r.commands.Buffer(slot)},
			SignalSemaphores: []core1_0.Semaphore{r.sync.renderingFinished},
		},
	)
	if err != nil {
		return driverFailure(err, "submit frame")
	}
	return nil
}

func (r *Renderer) presentImage(imageIndex int) (presentStatus, error) {
	res, err := r.swapchains.driver.QueuePresent(r.device.Queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{r.sync.renderingFinished},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain.Handle},
		ImageIndices:   []int{imageIndex},
	})
	status, err := classify(res, err)
	if err != nil {
		return status, driverFailure(err, "present swapchain image")
	}
	return status, nil
}

func (r *Renderer) waitQueueIdle() error {
	_, err := r.device.Driver.QueueWaitIdle(r.device.Queue)
	if err != nil {
		return driverFailure(err, "wait for graphics queue")
	}
	return nil
}

// classify separates the swapchain results the renderer recovers from
// (out of date, suboptimal) from real failures.
func classify(res common.VkResult, err error) (presentStatus, error) {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return presentOutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return presentSuboptimal, nil
	}

	if err != nil {
		return presentOK, err
	}
	if res != core1_0.VKSuccess {
		return presentOK, errors.Newf("unexpected result %v", res)
	}
	return presentOK, nil
}
