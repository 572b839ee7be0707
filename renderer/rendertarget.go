package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// BuildRenderPass creates the single-subpass render pass every frame uses.
// It depends only on the surface format, so it outlives swapchain rebuilds.
func BuildRenderPass(driver core1_0.DeviceDriver, format core1_0.Format) (core1_0.RenderPass, error) {
	renderPass, _, err := driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentRead | core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return core1_0.RenderPass{}, errors.Wrap(err, "create render pass")
	}

	return renderPass, nil
}

// BuildFramebuffers creates one framebuffer per swapchain image, each with
// the image view as its only attachment. On failure the framebuffers built
// so far are destroyed.
func BuildFramebuffers(driver core1_0.DeviceDriver, renderPass core1_0.RenderPass, images []SwapImage, extent core1_0.Extent2D) ([]core1_0.Framebuffer, error) {
	framebuffers := make([]core1_0.Framebuffer, 0, len(images))
	for _, image := range images {
		framebuffer, _, err := driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  renderPass,
			Layers:      1,
			Attachments: []core1_0.ImageView{image.View},
			Width:       extent.Width,
			Height:      extent.Height,
		})
		if err != nil {
			destroyFramebuffers(driver, framebuffers)
			return nil, errors.Wrap(err, "create framebuffer")
		}

		framebuffers = append(framebuffers, framebuffer)
	}

	err := checkFramebufferCount(len(framebuffers), len(images))
	if err != nil {
		destroyFramebuffers(driver, framebuffers)
		return nil, err
	}
	return framebuffers, nil
}

func checkFramebufferCount(framebuffers, images int) error {
	if framebuffers != images || images == 0 {
		return errors.AssertionFailedf("built %d framebuffers for %d swapchain images", framebuffers, images)
	}
	return nil
}

func destroyFramebuffers(driver core1_0.DeviceDriver, framebuffers []core1_0.Framebuffer) {
	for _, framebuffer := range framebuffers {
		if framebuffer.Initialized() {
			driver.DestroyFramebuffer(framebuffer, nil)
		}
	}
}
