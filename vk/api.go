package vk

import "unsafe"

// Allocator hands out unmanaged memory for data that crosses into the
// driver: C strings and the pointer arrays that reference them. Memory
// from Malloc is never moved or collected and must be released with Free.
type Allocator interface {
	Malloc(size uintptr) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// API is the set of native entry points bound by this module. Each method
// forwards to the Vulkan function of the same name, with output parameters
// passed as pointers exactly as in C. A nil output array pointer requests
// only the element count.
//
// Implementations: vk/native (the system loader via cgo) and
// internal/vktest (an in-memory fake).
type API interface {
	Allocator

	CreateInstance(info *InstanceCreateInfo, instance *Instance) Result
	DestroyInstance(instance Instance)

	// EnumerateInstanceVersion reports ErrorFeatureNotPresent on a 1.0
	// loader that does not export vkEnumerateInstanceVersion.
	EnumerateInstanceVersion(version *uint32) Result
	EnumerateInstanceExtensionProperties(layerName unsafe.Pointer, count *uint32, props *ExtensionProperties) Result
	EnumerateInstanceLayerProperties(count *uint32, props *LayerProperties) Result

	EnumeratePhysicalDevices(instance Instance, count *uint32, devices *PhysicalDevice) Result
	GetPhysicalDeviceProperties(physicalDevice PhysicalDevice, props *PhysicalDeviceProperties)
	GetPhysicalDeviceFeatures(physicalDevice PhysicalDevice, features *PhysicalDeviceFeatures)
	GetPhysicalDeviceMemoryProperties(physicalDevice PhysicalDevice, props *PhysicalDeviceMemoryProperties)
	GetPhysicalDeviceQueueFamilyProperties(physicalDevice PhysicalDevice, count *uint32, props *QueueFamilyProperties)
	EnumerateDeviceExtensionProperties(physicalDevice PhysicalDevice, layerName unsafe.Pointer, count *uint32, props *ExtensionProperties) Result
	EnumerateDeviceLayerProperties(physicalDevice PhysicalDevice, count *uint32, props *LayerProperties) Result

	CreateDevice(physicalDevice PhysicalDevice, info *DeviceCreateInfo, device *Device) Result
	DestroyDevice(device Device)
	GetDeviceQueue(device Device, queueFamilyIndex, queueIndex uint32, queue *Queue)
	DeviceWaitIdle(device Device) Result
}
