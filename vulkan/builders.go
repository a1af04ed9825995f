package vulkan

import (
	"unsafe"

	"vulkan-bindings/vk"
)

// NewInstanceCreateInfo fills a VkInstanceCreateInfo. appInfo may be nil.
// The name arrays are `const char* const*` in unmanaged memory, with
// layerCount and extensionCount entries respectively.
func NewInstanceCreateInfo(
	flags vk.InstanceCreateFlags,
	appInfo *vk.ApplicationInfo,
	layerCount uint32,
	layers unsafe.Pointer,
	extensionCount uint32,
	extensions unsafe.Pointer,
) vk.InstanceCreateInfo {
	return vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   flags,
		PApplicationInfo:        appInfo,
		EnabledLayerCount:       layerCount,
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   extensionCount,
		PpEnabledExtensionNames: extensions,
	}
}

// NewApplicationInfo fills a VkApplicationInfo. Both names are C strings.
// apiVersion is the highest Vulkan version the application targets.
func NewApplicationInfo(
	appName unsafe.Pointer,
	appVersion uint32,
	engineName unsafe.Pointer,
	engineVersion uint32,
	apiVersion uint32,
) vk.ApplicationInfo {
	return vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   appName,
		ApplicationVersion: appVersion,
		PEngineName:        engineName,
		EngineVersion:      engineVersion,
		APIVersion:         apiVersion,
	}
}

// NewDeviceQueueCreateInfo requests len(priorities) queues from family.
// The returned struct points into priorities.
func NewDeviceQueueCreateInfo(family uint32, priorities []float32) vk.DeviceQueueCreateInfo {
	info := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       uint32(len(priorities)),
	}
	if len(priorities) > 0 {
		info.PQueuePriorities = &priorities[0]
	}
	return info
}

func NewDeviceCreateInfo(
	queues []vk.DeviceQueueCreateInfo,
	layerCount uint32,
	layers unsafe.Pointer,
	extensionCount uint32,
	extensions unsafe.Pointer,
	features *vk.PhysicalDeviceFeatures,
) vk.DeviceCreateInfo {
	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queues)),
		EnabledLayerCount:       layerCount,
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   extensionCount,
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures:        features,
	}
	if len(queues) > 0 {
		info.PQueueCreateInfos = &queues[0]
	}
	return info
}
