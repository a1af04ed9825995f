//go:build cgo

package native

/*
#cgo windows LDFLAGS: -lvulkan-1
#cgo linux freebsd LDFLAGS: -lvulkan
#cgo darwin LDFLAGS: -lvulkan
#include <vulkan/vulkan.h>
#include <stdlib.h>

// vkEnumerateInstanceVersion is absent from 1.0 loaders, so it is
// resolved at runtime rather than linked.
static VkResult enumerateInstanceVersion(uint32_t* version) {
    PFN_vkEnumerateInstanceVersion f = (PFN_vkEnumerateInstanceVersion)vkGetInstanceProcAddr(NULL, "vkEnumerateInstanceVersion");
    if (f == NULL) {
        return VK_ERROR_FEATURE_NOT_PRESENT;
    }
    return f(version);
}
*/
import "C"
import (
	"fmt"
	"unsafe"

	"vulkan-bindings/vk"
)

// driver forwards every vk.API method to the linked Vulkan loader.
type driver struct{}

// Load checks that the vk records match the C headers this package was
// built against and returns the system loader as a vk.API.
func Load() (vk.API, error) {
	if err := checkLayout(); err != nil {
		return nil, err
	}
	return driver{}, nil
}

func checkLayout() error {
	layouts := []struct {
		name   string
		goSize uintptr
		cSize  uintptr
	}{
		{"VkPhysicalDeviceProperties", unsafe.Sizeof(vk.PhysicalDeviceProperties{}), uintptr(C.sizeof_VkPhysicalDeviceProperties)},
		{"VkPhysicalDeviceFeatures", unsafe.Sizeof(vk.PhysicalDeviceFeatures{}), uintptr(C.sizeof_VkPhysicalDeviceFeatures)},
		{"VkPhysicalDeviceMemoryProperties", unsafe.Sizeof(vk.PhysicalDeviceMemoryProperties{}), uintptr(C.sizeof_VkPhysicalDeviceMemoryProperties)},
		{"VkQueueFamilyProperties", unsafe.Sizeof(vk.QueueFamilyProperties{}), uintptr(C.sizeof_VkQueueFamilyProperties)},
		{"VkExtensionProperties", unsafe.Sizeof(vk.ExtensionProperties{}), uintptr(C.sizeof_VkExtensionProperties)},
		{"VkLayerProperties", unsafe.Sizeof(vk.LayerProperties{}), uintptr(C.sizeof_VkLayerProperties)},
	}
	for _, l := range layouts {
		if l.goSize != l.cSize {
			return fmt.Errorf("%w: %s is %d bytes in Go, %d in C", ErrLayoutMismatch, l.name, l.goSize, l.cSize)
		}
	}
	return nil
}

// Handles are pointer-sized in both worlds; reinterpret the bits instead
// of converting through unsafe.Pointer arithmetic.

func cInstance(h vk.Instance) C.VkInstance { return *(*C.VkInstance)(unsafe.Pointer(&h)) }
func cPhysicalDevice(h vk.PhysicalDevice) C.VkPhysicalDevice {
	return *(*C.VkPhysicalDevice)(unsafe.Pointer(&h))
}
func cDevice(h vk.Device) C.VkDevice { return *(*C.VkDevice)(unsafe.Pointer(&h)) }

func (driver) Malloc(size uintptr) unsafe.Pointer {
	return C.malloc(C.size_t(size))
}

func (driver) Free(p unsafe.Pointer) {
	C.free(p)
}

// cAlloc tracks C allocations made while converting a descriptor so they
// can be released together once the native call returns.
type cAlloc []unsafe.Pointer

func (a *cAlloc) malloc(size C.size_t) unsafe.Pointer {
	p := C.calloc(1, size)
	*a = append(*a, p)
	return p
}

func (a *cAlloc) free() {
	for _, p := range *a {
		C.free(p)
	}
	*a = nil
}

func (driver) CreateInstance(info *vk.InstanceCreateInfo, instance *vk.Instance) vk.Result {
	var mem cAlloc
	defer mem.free()

	cinfo := C.VkInstanceCreateInfo{
		sType:                   C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO,
		pNext:                   info.PNext,
		flags:                   C.VkInstanceCreateFlags(info.Flags),
		enabledLayerCount:       C.uint32_t(info.EnabledLayerCount),
		ppEnabledLayerNames:     (**C.char)(info.PpEnabledLayerNames),
		enabledExtensionCount:   C.uint32_t(info.EnabledExtensionCount),
		ppEnabledExtensionNames: (**C.char)(info.PpEnabledExtensionNames),
	}
	if ai := info.PApplicationInfo; ai != nil {
		// Keep the nested struct in C memory so cinfo holds no Go pointers.
		app := (*C.VkApplicationInfo)(mem.malloc(C.sizeof_VkApplicationInfo))
		*app = C.VkApplicationInfo{
			sType:              C.VK_STRUCTURE_TYPE_APPLICATION_INFO,
			pNext:              ai.PNext,
			pApplicationName:   (*C.char)(ai.PApplicationName),
			applicationVersion: C.uint32_t(ai.ApplicationVersion),
			pEngineName:        (*C.char)(ai.PEngineName),
			engineVersion:      C.uint32_t(ai.EngineVersion),
			apiVersion:         C.uint32_t(ai.APIVersion),
		}
		cinfo.pApplicationInfo = app
	}

	var out C.VkInstance
	res := C.vkCreateInstance(&cinfo, nil, &out)
	*instance = *(*vk.Instance)(unsafe.Pointer(&out))
	return vk.Result(res)
}

func (driver) DestroyInstance(instance vk.Instance) {
	C.vkDestroyInstance(cInstance(instance), nil)
}

func (driver) EnumerateInstanceVersion(version *uint32) vk.Result {
	var v C.uint32_t
	res := C.enumerateInstanceVersion(&v)
	*version = uint32(v)
	return vk.Result(res)
}

func (driver) EnumerateInstanceExtensionProperties(layerName unsafe.Pointer, count *uint32, props *vk.ExtensionProperties) vk.Result {
	return vk.Result(C.vkEnumerateInstanceExtensionProperties(
		(*C.char)(layerName),
		(*C.uint32_t)(unsafe.Pointer(count)),
		(*C.VkExtensionProperties)(unsafe.Pointer(props)),
	))
}

func (driver) EnumerateInstanceLayerProperties(count *uint32, props *vk.LayerProperties) vk.Result {
	return vk.Result(C.vkEnumerateInstanceLayerProperties(
		(*C.uint32_t)(unsafe.Pointer(count)),
		(*C.VkLayerProperties)(unsafe.Pointer(props)),
	))
}

func (driver) EnumeratePhysicalDevices(instance vk.Instance, count *uint32, devices *vk.PhysicalDevice) vk.Result {
	return vk.Result(C.vkEnumeratePhysicalDevices(
		cInstance(instance),
		(*C.uint32_t)(unsafe.Pointer(count)),
		(*C.VkPhysicalDevice)(unsafe.Pointer(devices)),
	))
}

func (driver) GetPhysicalDeviceProperties(physicalDevice vk.PhysicalDevice, props *vk.PhysicalDeviceProperties) {
	C.vkGetPhysicalDeviceProperties(cPhysicalDevice(physicalDevice), (*C.VkPhysicalDeviceProperties)(unsafe.Pointer(props)))
}

func (driver) GetPhysicalDeviceFeatures(physicalDevice vk.PhysicalDevice, features *vk.PhysicalDeviceFeatures) {
	C.vkGetPhysicalDeviceFeatures(cPhysicalDevice(physicalDevice), (*C.VkPhysicalDeviceFeatures)(unsafe.Pointer(features)))
}

func (driver) GetPhysicalDeviceMemoryProperties(physicalDevice vk.PhysicalDevice, props *vk.PhysicalDeviceMemoryProperties) {
	C.vkGetPhysicalDeviceMemoryProperties(cPhysicalDevice(physicalDevice), (*C.VkPhysicalDeviceMemoryProperties)(unsafe.Pointer(props)))
}

func (driver) GetPhysicalDeviceQueueFamilyProperties(physicalDevice vk.PhysicalDevice, count *uint32, props *vk.QueueFamilyProperties) {
	C.vkGetPhysicalDeviceQueueFamilyProperties(
		cPhysicalDevice(physicalDevice),
		(*C.uint32_t)(unsafe.Pointer(count)),
		(*C.VkQueueFamilyProperties)(unsafe.Pointer(props)),
	)
}

func (driver) EnumerateDeviceExtensionProperties(physicalDevice vk.PhysicalDevice, layerName unsafe.Pointer, count *uint32, props *vk.ExtensionProperties) vk.Result {
	return vk.Result(C.vkEnumerateDeviceExtensionProperties(
		cPhysicalDevice(physicalDevice),
		(*C.char)(layerName),
		(*C.uint32_t)(unsafe.Pointer(count)),
		(*C.VkExtensionProperties)(unsafe.Pointer(props)),
	))
}

func (driver) EnumerateDeviceLayerProperties(physicalDevice vk.PhysicalDevice, count *uint32, props *vk.LayerProperties) vk.Result {
	return vk.Result(C.vkEnumerateDeviceLayerProperties(
		cPhysicalDevice(physicalDevice),
		(*C.uint32_t)(unsafe.Pointer(count)),
		(*C.VkLayerProperties)(unsafe.Pointer(props)),
	))
}

func (driver) CreateDevice(physicalDevice vk.PhysicalDevice, info *vk.DeviceCreateInfo, device *vk.Device) vk.Result {
	var mem cAlloc
	defer mem.free()

	cinfo := C.VkDeviceCreateInfo{
		sType:                   C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO,
		pNext:                   info.PNext,
		flags:                   C.VkDeviceCreateFlags(info.Flags),
		queueCreateInfoCount:    C.uint32_t(info.QueueCreateInfoCount),
		enabledLayerCount:       C.uint32_t(info.EnabledLayerCount),
		ppEnabledLayerNames:     (**C.char)(info.PpEnabledLayerNames),
		enabledExtensionCount:   C.uint32_t(info.EnabledExtensionCount),
		ppEnabledExtensionNames: (**C.char)(info.PpEnabledExtensionNames),
	}

	if n := int(info.QueueCreateInfoCount); n > 0 && info.PQueueCreateInfos != nil {
		src := unsafe.Slice(info.PQueueCreateInfos, n)
		queues := unsafe.Slice((*C.VkDeviceQueueCreateInfo)(mem.malloc(C.size_t(n)*C.sizeof_VkDeviceQueueCreateInfo)), n)
		for i, q := range src {
			queues[i] = C.VkDeviceQueueCreateInfo{
				sType:            C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO,
				pNext:            q.PNext,
				flags:            C.VkDeviceQueueCreateFlags(q.Flags),
				queueFamilyIndex: C.uint32_t(q.QueueFamilyIndex),
				queueCount:       C.uint32_t(q.QueueCount),
			}
			if q.QueueCount > 0 && q.PQueuePriorities != nil {
				prio := unsafe.Slice((*C.float)(mem.malloc(C.size_t(q.QueueCount)*C.sizeof_float)), q.QueueCount)
				for j, p := range unsafe.Slice(q.PQueuePriorities, q.QueueCount) {
					prio[j] = C.float(p)
				}
				queues[i].pQueuePriorities = &prio[0]
			}
		}
		cinfo.pQueueCreateInfos = &queues[0]
	}

	if info.PEnabledFeatures != nil {
		features := mem.malloc(C.sizeof_VkPhysicalDeviceFeatures)
		*(*vk.PhysicalDeviceFeatures)(features) = *info.PEnabledFeatures
		cinfo.pEnabledFeatures = (*C.VkPhysicalDeviceFeatures)(features)
	}

	var out C.VkDevice
	res := C.vkCreateDevice(cPhysicalDevice(physicalDevice), &cinfo, nil, &out)
	*device = *(*vk.Device)(unsafe.Pointer(&out))
	return vk.Result(res)
}

func (driver) DestroyDevice(device vk.Device) {
	C.vkDestroyDevice(cDevice(device), nil)
}

func (driver) GetDeviceQueue(device vk.Device, queueFamilyIndex, queueIndex uint32, queue *vk.Queue) {
	var out C.VkQueue
	C.vkGetDeviceQueue(cDevice(device), C.uint32_t(queueFamilyIndex), C.uint32_t(queueIndex), &out)
	*queue = *(*vk.Queue)(unsafe.Pointer(&out))
}

func (driver) DeviceWaitIdle(device vk.Device) vk.Result {
	return vk.Result(C.vkDeviceWaitIdle(cDevice(device)))
}
