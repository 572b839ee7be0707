package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// startupStep creates one part of the renderer. A step with a release owns
// a GPU object, and the release is pushed as soon as create succeeds.
type startupStep struct {
	name    string
	create  func() error
	release func()
}

// runStartup runs steps in order and stops at the first failure. Releases
// of the steps that succeeded stay on the stack for the caller to unwind.
func runStartup(steps []startupStep, releases *releaseStack) error {
	for _, step := range steps {
		err := step.create()
		if err != nil {
			return errors.Wrapf(err, "startup: %s", step.name)
		}
		if step.release != nil {
			releases.push(step.name, step.release)
		}
	}
	return nil
}

// startupSteps is the creation order of every object the renderer owns.
// Teardown is this table in reverse.
func (r *Renderer) startupSteps(target PresentationTarget, extent core1_0.Extent2D, scene Scene) []startupStep {
	return []startupStep{
		{
			name: "driver",
			create: func() error {
				var err error
				r.globalDriver, err = core.CreateDriverFromProcAddr(target.InstanceProcAddr())
				return err
			},
		},
		{
			name:   "instance",
			create: func() error { return r.createInstance(target) },
			release: func() {
				r.instanceDriver.DestroyInstance(nil)
			},
		},
		{
			name: "debug messenger",
			create: func() error {
				if !r.opts.Validation {
					return nil
				}
				return r.setupDebugMessenger()
			},
			release: func() {
				if r.debugDriver != nil && r.debugMessenger.Initialized() {
					r.debugDriver.DestroyDebugUtilsMessenger(r.debugMessenger, nil)
				}
			},
		},
		{
			name:   "surface",
			create: func() error { return r.createSurface(target) },
			release: func() {
				r.surfaceDriver.DestroySurface(r.surface, nil)
			},
		},
		{
			name: "device",
			create: func() error {
				var err error
				r.device, err = SelectDevice(r.instanceDriver, r.surfaceDriver, r.surface, r.logger)
				return err
			},
			release: func() { r.device.Destroy() },
		},
		{
			name: "swapchain support",
			create: func() error {
				var err error
				r.swapchains, err = newSwapchainManager(r.device, r.surfaceDriver, r.surface, r.logger)
				return err
			},
		},
		{
			name: "command pool",
			create: func() error {
				var err error
				r.commands, err = createCommandRing(r.device.Driver, r.device.QueueFamily)
				return err
			},
			release: func() { r.commands.destroyPool() },
		},
		{
			name: "semaphores",
			create: func() error {
				var err error
				r.sync, err = createFrameSync(r.device.Driver)
				return err
			},
			release: func() { r.sync.destroy(r.device.Driver) },
		},
		{
			name: "render pass",
			create: func() error {
				var err error
				r.renderPass, err = BuildRenderPass(r.device.Driver, r.swapchains.format.Format)
				return err
			},
			release: func() {
				r.device.Driver.DestroyRenderPass(r.renderPass, nil)
			},
		},
		{
			name:    "command buffers",
			create:  func() error { return r.commands.Allocate(r.opts.InFlightCount) },
			release: func() { r.commands.Free() },
		},
		{
			name: "swapchain",
			create: func() error {
				var err error
				r.swapchain, err = r.swapchains.CreateOrRecreate(extent, r.opts.Vsync, nil)
				return err
			},
			release: func() { r.swapchains.Destroy(r.swapchain) },
		},
		{
			name: "framebuffers",
			create: func() error {
				var err error
				r.framebuffers, err = BuildFramebuffers(r.device.Driver, r.renderPass, r.swapchain.Images, r.swapchain.Extent)
				return err
			},
			release: r.destroyFramebuffers,
		},
		{
			name: "pipeline",
			create: func() error {
				var err error
				r.pipeline, err = BuildPipeline(r.device.Driver, r.renderPass, scene.VertexShader, scene.FragmentShader)
				return err
			},
			release: func() { r.pipeline.Destroy() },
		},
		{
			name: "geometry",
			create: func() error {
				var err error
				r.geometry, err = UploadGeometry(r.device, r.commands.pool, scene.Geometry)
				return err
			},
			release: func() { r.geometry.Destroy() },
		},
	}
}
