package vulkan

import (
	"unsafe"

	"vulkan-bindings/vk"
)

// PhysicalDevice is a GPU reported by an instance. Physical devices are
// enumerated, never created, so the wrapper is a plain value with nothing
// to destroy. It is valid while the instance that listed it is.
type PhysicalDevice struct {
	api    vk.API
	handle vk.PhysicalDevice
}

func (d PhysicalDevice) Handle() vk.PhysicalDevice { return d.handle }

// Properties returns a copy of VkPhysicalDeviceProperties.
func (d PhysicalDevice) Properties() vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	d.api.GetPhysicalDeviceProperties(d.handle, &props)
	return props
}

// Features returns a copy of VkPhysicalDeviceFeatures.
func (d PhysicalDevice) Features() vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	d.api.GetPhysicalDeviceFeatures(d.handle, &features)
	return features
}

func (d PhysicalDevice) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	d.api.GetPhysicalDeviceMemoryProperties(d.handle, &props)
	return props
}

func (d PhysicalDevice) QueueFamilyProperties() []vk.QueueFamilyProperties {
	return enumerateNoResult(func(count *uint32, out *vk.QueueFamilyProperties) {
		d.api.GetPhysicalDeviceQueueFamilyProperties(d.handle, count, out)
	})
}

// EnumerateDeviceExtensionProperties lists the device extensions of the
// implementation (layerName "") or of one layer.
func (d PhysicalDevice) EnumerateDeviceExtensionProperties(layerName string) ([]vk.ExtensionProperties, error) {
	var props []vk.ExtensionProperties
	err := withOptionalCString(d.api, layerName, func(layer unsafe.Pointer) error {
		var err error
		props, err = enumerate("vkEnumerateDeviceExtensionProperties", func(count *uint32, out *vk.ExtensionProperties) vk.Result {
			return d.api.EnumerateDeviceExtensionProperties(d.handle, layer, count, out)
		})
		return err
	})
	return props, err
}

func (d PhysicalDevice) EnumerateDeviceLayerProperties() ([]vk.LayerProperties, error) {
	return enumerate("vkEnumerateDeviceLayerProperties", func(count *uint32, out *vk.LayerProperties) vk.Result {
		return d.api.EnumerateDeviceLayerProperties(d.handle, count, out)
	})
}

func (d PhysicalDevice) Name() string {
	props := d.Properties()
	return props.Name()
}

func (d PhysicalDevice) Type() vk.PhysicalDeviceType {
	return d.Properties().DeviceType
}

func (d PhysicalDevice) APIVersion() APIVersion {
	return APIVersion(d.Properties().APIVersion)
}

// FindQueueFamily returns the first queue family that supports all of
// flags and has at least one queue.
func (d PhysicalDevice) FindQueueFamily(flags vk.QueueFlags) (uint32, bool) {
	for i, family := range d.QueueFamilyProperties() {
		if family.QueueCount > 0 && family.QueueFlags&flags == flags {
			return uint32(i), true
		}
	}
	return 0, false
}

// MissingExtensions returns the names in want this device does not offer.
func (d PhysicalDevice) MissingExtensions(want ...string) ([]string, error) {
	props, err := d.EnumerateDeviceExtensionProperties("")
	if err != nil {
		return nil, err
	}
	return missingNames(props, want), nil
}
