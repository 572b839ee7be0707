package renderer

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

// PresentationTarget is the window the renderer draws into. The platform
// layer implements it.
type PresentationTarget interface {
	// InstanceProcAddr returns vkGetInstanceProcAddr from the loader the
	// window system linked against.
	InstanceProcAddr() unsafe.Pointer
	// InstanceExtensions lists the instance extensions surface creation needs.
	InstanceExtensions() []string
	CreateSurface(instance core1_0.Instance, surfaceDriver khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}

func (r *Renderer) createInstance(target PresentationTarget) error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    r.opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "Pegasus",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := r.globalDriver.AvailableExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerate instance extensions")
	}

	for _, ext := range target.InstanceExtensions() {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Newf("createInstance: missing required extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if r.opts.Validation {
		_, hasExt := extensions[ext_debug_utils.ExtensionName]
		if !hasExt {
			return errors.Newf("createInstance: validation requested but %s is missing", ext_debug_utils.ExtensionName)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if r.opts.Validation {
		layers, _, err := r.globalDriver.AvailableLayers()
		if err != nil {
			return errors.Wrap(err, "enumerate instance layers")
		}

		_, hasValidation := layers[validationLayer]
		if !hasValidation {
			return errors.Newf("createInstance: layer %s not available- install the LunarG Vulkan SDK", validationLayer)
		}
		instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, validationLayer)

		// Chained so instance creation and destruction are validated too.
		instanceOptions.Next = r.debugMessengerOptions()
	}

	r.instanceDriver, _, err = r.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrap(err, "create instance")
	}

	r.logger.Info("instance created", slog.Any("extensions", instanceOptions.EnabledExtensionNames))
	return nil
}

func (r *Renderer) createSurface(target PresentationTarget) error {
	r.surfaceDriver = khr_surface.CreateExtensionDriverFromCoreDriver(r.instanceDriver)

	surface, err := target.CreateSurface(r.instanceDriver.Instance(), r.surfaceDriver)
	if err != nil {
		return err
	}

	r.surface = surface
	return nil
}
