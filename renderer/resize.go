package renderer

import (
	"log/slog"

	"github.com/vkngwrapper/core/v3/core1_0"
)

// swapchainRebuilder replaces every swapchain-dependent object for a new
// extent and returns the extent the driver actually granted.
type swapchainRebuilder interface {
	rebuildSwapchain(extent core1_0.Extent2D) (core1_0.Extent2D, error)
}

// resizeController owns the current extent and the suspended flag. It is
// the only writer of either; the frame loop reads them between frames.
// requested is the last size the platform asked for, which differs from
// extent when the driver clamped it.
type resizeController struct {
	logger    *slog.Logger
	target    swapchainRebuilder
	requested core1_0.Extent2D
	extent    core1_0.Extent2D
	suspended bool
	rebuilds  int
}

func newResizeController(target swapchainRebuilder, requested, extent core1_0.Extent2D, logger *slog.Logger) *resizeController {
	return &resizeController{
		logger:    logger,
		target:    target,
		requested: requested,
		extent:    extent,
	}
}

// notify handles a size change reported by the platform. A zero dimension
// suspends rendering; any other size rebuilds unless it repeats the last
// requested size.
func (c *resizeController) notify(width, height int) error {
	if width <= 0 || height <= 0 {
		if !c.suspended {
			c.logger.Info("surface has zero area, suspending rendering",
				slog.Int("width", width), slog.Int("height", height))
		}
		c.suspended = true
		return nil
	}

	requested := core1_0.Extent2D{Width: width, Height: height}
	if !c.suspended && requested == c.requested {
		return nil
	}

	c.suspended = false
	c.requested = requested
	return c.rebuild(requested)
}

// invalidate handles an out-of-date or suboptimal presentation result by
// rebuilding at the current extent.
func (c *resizeController) invalidate() error {
	if c.suspended {
		return nil
	}
	return c.rebuild(c.extent)
}

func (c *resizeController) rebuild(requested core1_0.Extent2D) error {
	granted, err := c.target.rebuildSwapchain(requested)
	if err != nil {
		return err
	}

	c.rebuilds++
	c.extent = granted
	c.logger.Info("swapchain rebuilt",
		slog.Int("width", granted.Width), slog.Int("height", granted.Height))
	return nil
}
