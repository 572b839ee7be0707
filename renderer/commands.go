package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// commandRing is the command pool and the N primary buffers the frame loop
// cycles through by slot.
type commandRing struct {
	driver  core1_0.DeviceDriver
	pool    core1_0.CommandPool
	buffers []core1_0.CommandBuffer
}

// frameRecording is everything one frame's command buffer draws with.
type frameRecording struct {
	renderPass  core1_0.RenderPass
	framebuffer core1_0.Framebuffer
	extent      core1_0.Extent2D
	clearColor  [4]float32
	pipeline    *Pipeline
	geometry    *GeometryBuffer
}

func createCommandRing(driver core1_0.DeviceDriver, queueFamily int) (*commandRing, error) {
	pool, _, err := driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: queueFamily,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create command pool")
	}

	return &commandRing{driver: driver, pool: pool}, nil
}

// Allocate replaces the ring's buffers with count fresh primary buffers.
func (c *commandRing) Allocate(count int) error {
	if count < 1 {
		return errors.AssertionFailedf("command ring needs at least one buffer, got %d", count)
	}
	c.Free()

	buffers, _, err := c.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return errors.Wrap(err, "allocate command buffers")
	}

	c.buffers = buffers
	return nil
}

func (c *commandRing) Free() {
	if len(c.buffers) == 0 {
		return
	}
	c.driver.FreeCommandBuffers(c.buffers...)
	c.buffers = nil
}

func (c *commandRing) Buffer(slot int) core1_0.CommandBuffer {
	return c.buffers[slot]
}

// Record overwrites the buffer at slot with one pass over the framebuffer.
// The buffer must not be executing.
func (c *commandRing) Record(slot int, frame frameRecording) error {
	if slot < 0 || slot >= len(c.buffers) {
		return errors.AssertionFailedf("slot %d outside command ring of %d", slot, len(c.buffers))
	}
	buffer := c.buffers[slot]

	_, err := c.driver.ResetCommandBuffer(buffer, 0)
	if err != nil {
		return errors.Wrap(err, "reset command buffer")
	}

	_, err = c.driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	fullArea := core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: frame.extent,
	}

	err = c.driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  frame.renderPass,
			Framebuffer: frame.framebuffer,
			RenderArea:  fullArea,
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat(frame.clearColor),
			},
		})
	if err != nil {
		return errors.Wrap(err, "begin render pass")
	}

	c.driver.CmdSetViewport(buffer, core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(frame.extent.Width),
		Height:   float32(frame.extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	c.driver.CmdSetScissor(buffer, fullArea)

	frame.pipeline.Bind(buffer)
	frame.geometry.Bind(buffer)
	frame.geometry.Draw(buffer)

	c.driver.CmdEndRenderPass(buffer)

	_, err = c.driver.EndCommandBuffer(buffer)
	if err != nil {
		return errors.Wrap(err, "end command buffer")
	}
	return nil
}

func (c *commandRing) destroyPool() {
	if c == nil {
		return
	}
	if c.pool.Initialized() {
		c.driver.DestroyCommandPool(c.pool, nil)
		c.pool = core1_0.CommandPool{}
	}
}
