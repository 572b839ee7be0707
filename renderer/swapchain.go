package renderer

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// SwapImage is a presentable image and the view framebuffers attach to.
type SwapImage struct {
	Image core1_0.Image
	View  core1_0.ImageView
}

// Swapchain is never mutated after creation; a resize produces a new one.
type Swapchain struct {
	Handle        khr_swapchain.Swapchain
	SurfaceFormat khr_surface.SurfaceFormat
	Extent        core1_0.Extent2D
	PresentMode   khr_surface.PresentMode
	Images        []SwapImage
}

type swapchainManager struct {
	logger        *slog.Logger
	device        *GraphicsDevice
	driver        khr_swapchain.ExtensionDriver
	surfaceDriver khr_surface.ExtensionDriver
	surface       khr_surface.Surface
	format        khr_surface.SurfaceFormat
}

func newSwapchainManager(device *GraphicsDevice, surfaceDriver khr_surface.ExtensionDriver, surface khr_surface.Surface, logger *slog.Logger) (*swapchainManager, error) {
	formats, _, err := surfaceDriver.GetPhysicalDeviceSurfaceFormats(surface, device.PhysicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "query surface formats")
	}

	format, err := chooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}

	return &swapchainManager{
		logger:        logger,
		device:        device,
		driver:        khr_swapchain.CreateExtensionDriverFromCoreDriver(device.Driver),
		surfaceDriver: surfaceDriver,
		surface:       surface,
		format:        format,
	}, nil
}

// CreateOrRecreate builds a swapchain for the surface's current
// capabilities. When old is non-nil it is handed to the driver for resource
// reuse and destroyed, with its image views, once the new swapchain exists.
func (m *swapchainManager) CreateOrRecreate(requested core1_0.Extent2D, vsync bool, old *Swapchain) (*Swapchain, error) {
	capabilities, _, err := m.surfaceDriver.GetPhysicalDeviceSurfaceCapabilities(m.surface, m.device.PhysicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "query surface capabilities")
	}

	presentModes, _, err := m.surfaceDriver.GetPhysicalDeviceSurfacePresentModes(m.surface, m.device.PhysicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "query present modes")
	}

	extent := clampExtent(capabilities, requested)
	presentMode := choosePresentMode(presentModes, vsync)

	createInfo := khr_swapchain.SwapchainCreateInfo{
		Surface: m.surface,

		MinImageCount:    chooseImageCount(capabilities),
		ImageFormat:      m.format.Format,
		ImageColorSpace:  m.format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,
		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	}
	if old != nil {
		createInfo.OldSwapchain = old.Handle
	}

	handle, _, err := m.driver.CreateSwapchain(nil, createInfo)
	if err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}

	swapchain := &Swapchain{
		Handle:        handle,
		SurfaceFormat: m.format,
		Extent:        extent,
		PresentMode:   presentMode,
	}

	m.Destroy(old)

	err = m.createImageViews(swapchain)
	if err != nil {
		m.Destroy(swapchain)
		return nil, err
	}

	m.logger.Info("swapchain created",
		slog.Int("width", extent.Width),
		slog.Int("height", extent.Height),
		slog.Int("images", len(swapchain.Images)),
		slog.Any("presentMode", presentMode))
	return swapchain, nil
}

func (m *swapchainManager) createImageViews(swapchain *Swapchain) error {
	images, _, err := m.driver.GetSwapchainImages(swapchain.Handle)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}

	for _, image := range images {
		view, _, err := m.device.Driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   swapchain.SurfaceFormat.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrap(err, "create swapchain image view")
		}

		swapchain.Images = append(swapchain.Images, SwapImage{Image: image, View: view})
	}

	return nil
}

// Destroy releases the image views and the swapchain. Images belong to the
// swapchain and are not destroyed individually.
func (m *swapchainManager) Destroy(swapchain *Swapchain) {
	if swapchain == nil {
		return
	}

	for _, image := range swapchain.Images {
		if image.View.Initialized() {
			m.device.Driver.DestroyImageView(image.View, nil)
		}
	}
	swapchain.Images = nil

	if swapchain.Handle.Initialized() {
		m.driver.DestroySwapchain(swapchain.Handle, nil)
		swapchain.Handle = khr_swapchain.Swapchain{}
	}
}

func chooseSurfaceFormat(formats []khr_surface.SurfaceFormat) (khr_surface.SurfaceFormat, error) {
	if len(formats) == 0 {
		return khr_surface.SurfaceFormat{}, errors.New("surface reports no formats")
	}

	// A lone undefined format means the surface has no preference.
	if len(formats) == 1 && formats[0].Format == core1_0.FormatUndefined {
		return khr_surface.SurfaceFormat{
			Format:     core1_0.FormatB8G8R8A8UnsignedNormalized,
			ColorSpace: formats[0].ColorSpace,
		}, nil
	}

	for _, format := range formats {
		if format.Format == core1_0.FormatB8G8R8A8UnsignedNormalized && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	return formats[0], nil
}

func choosePresentMode(available []khr_surface.PresentMode, vsync bool) khr_surface.PresentMode {
	if vsync {
		return khr_surface.PresentModeFIFO
	}

	for _, preferred := range []khr_surface.PresentMode{khr_surface.PresentModeMailbox, khr_surface.PresentModeImmediate} {
		for _, mode := range available {
			if mode == preferred {
				return mode
			}
		}
	}

	// FIFO is the one mode every surface must support.
	return khr_surface.PresentModeFIFO
}

func chooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clampExtent(capabilities *khr_surface.SurfaceCapabilities, requested core1_0.Extent2D) core1_0.Extent2D {
	return core1_0.Extent2D{
		Width:  clamp(requested.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(requested.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
