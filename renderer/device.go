package renderer

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

var deviceExtensions = []string{khr_swapchain.ExtensionName}

// GraphicsDevice is the long-lived device context. Pipelines, geometry and
// command buffers keep a pointer to it and never outlive it: it is created
// before them and destroyed after them.
type GraphicsDevice struct {
	PhysicalDevice   core1_0.PhysicalDevice
	Properties       *core1_0.PhysicalDeviceProperties
	Features         *core1_0.PhysicalDeviceFeatures
	MemoryProperties *core1_0.PhysicalDeviceMemoryProperties

	Driver      core1_0.CoreDeviceDriver
	Queue       core1_0.Queue
	QueueFamily int
}

// SelectDevice picks the first physical device with a queue family that
// can draw and present to surface, then creates the logical device with a
// single queue from that family. There is no ranking between devices.
func SelectDevice(instance core1_0.CoreInstanceDriver, surfaceDriver khr_surface.ExtensionDriver, surface khr_surface.Surface, logger *slog.Logger) (*GraphicsDevice, error) {
	physicalDevices, _, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	if len(physicalDevices) == 0 {
		return nil, errors.Wrap(ErrNoSuitableDevice, "no device with Vulkan support found")
	}

	var family int
	physicalDevice, ok := firstQualifying(physicalDevices, func(candidate core1_0.PhysicalDevice) (bool, error) {
		index, found, err := queueFamilyFor(instance, surfaceDriver, surface, candidate)
		if err != nil || !found {
			return false, err
		}

		supported, err := hasDeviceExtensions(instance, candidate)
		if err != nil || !supported {
			return false, err
		}

		family = index
		return true, nil
	}, func(index int, err error) {
		logger.Warn("skipping physical device", slog.Int("index", index), slog.Any("error", err))
	})
	if !ok {
		return nil, errors.Wrapf(ErrNoSuitableDevice, "none of %d devices can draw and present", len(physicalDevices))
	}

	device := &GraphicsDevice{
		PhysicalDevice:   physicalDevice,
		Features:         instance.GetPhysicalDeviceFeatures(physicalDevice),
		MemoryProperties: instance.GetPhysicalDeviceMemoryProperties(physicalDevice),
		QueueFamily:      family,
	}

	device.Properties, err = instance.GetPhysicalDeviceProperties(physicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "read physical device properties")
	}

	err = device.createLogicalDevice(instance)
	if err != nil {
		return nil, err
	}

	logger.Info("device selected",
		slog.String("name", device.Properties.DeviceName),
		slog.Int("queueFamily", family))
	return device, nil
}

// firstQualifying returns the first candidate qualifies accepts. A
// candidate whose check fails is reported to skipped and passed over.
func firstQualifying[T any](candidates []T, qualifies func(T) (bool, error), skipped func(int, error)) (T, bool) {
	for index, candidate := range candidates {
		ok, err := qualifies(candidate)
		if err != nil {
			skipped(index, err)
			continue
		}
		if ok {
			return candidate, true
		}
	}

	var none T
	return none, false
}

func queueFamilyFor(instance core1_0.CoreInstanceDriver, surfaceDriver khr_surface.ExtensionDriver, surface khr_surface.Surface, physicalDevice core1_0.PhysicalDevice) (int, bool, error) {
	var families []core1_0.QueueFlags
	for _, family := range instance.GetPhysicalDeviceQueueFamilyProperties(physicalDevice) {
		families = append(families, family.QueueFlags)
	}

	return graphicsPresentFamily(families, func(index int) (bool, error) {
		supported, _, err := surfaceDriver.GetPhysicalDeviceSurfaceSupport(surface, physicalDevice, index)
		if err != nil {
			return false, errors.Wrapf(err, "query present support of queue family %d", index)
		}
		return supported, nil
	})
}

// graphicsPresentFamily returns the first queue family with the graphics
// bit for which presentSupported reports true. A nil presentSupported
// accepts any graphics family.
func graphicsPresentFamily(families []core1_0.QueueFlags, presentSupported func(int) (bool, error)) (int, bool, error) {
	for index, flags := range families {
		if flags&core1_0.QueueGraphics == 0 {
			continue
		}

		if presentSupported == nil {
			return index, true, nil
		}

		supported, err := presentSupported(index)
		if err != nil {
			return 0, false, err
		}
		if supported {
			return index, true, nil
		}
	}

	return 0, false, nil
}

func hasDeviceExtensions(instance core1_0.CoreInstanceDriver, physicalDevice core1_0.PhysicalDevice) (bool, error) {
	extensions, _, err := instance.EnumerateDeviceExtensionProperties(physicalDevice)
	if err != nil {
		return false, errors.Wrap(err, "enumerate device extensions")
	}

	for _, extension := range deviceExtensions {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false, nil
		}
	}
	return true, nil
}

func (d *GraphicsDevice) createLogicalDevice(instance core1_0.CoreInstanceDriver) error {
	extensionNames := append([]string{}, deviceExtensions...)

	extensions, _, err := instance.EnumerateDeviceExtensionProperties(d.PhysicalDevice)
	if err != nil {
		return errors.Wrap(err, "enumerate device extensions")
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	d.Driver, _, err = instance.CreateDevice(d.PhysicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: d.QueueFamily,
				QueuePriorities:  []float32{1.0},
			},
		},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return errors.Wrap(err, "create logical device")
	}

	d.Queue = d.Driver.GetQueue(d.QueueFamily, 0)
	return nil
}

// Destroy is safe to call on a device whose creation failed.
func (d *GraphicsDevice) Destroy() {
	if d == nil || d.Driver == nil {
		return
	}
	d.Driver.DestroyDevice(nil)
	d.Driver = nil
}

func (d *GraphicsDevice) waitIdle() error {
	if d == nil || d.Driver == nil {
		return nil
	}

	_, err := d.Driver.DeviceWaitIdle()
	if err != nil {
		return driverFailure(err, "wait for device idle")
	}
	return nil
}
