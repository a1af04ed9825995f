package vk

// Dispatchable handles. The driver owns the memory behind them; this
// package only moves the pointer value around.
type (
	Instance       uintptr
	PhysicalDevice uintptr
	Device         uintptr
	Queue          uintptr
)

// NullHandle is VK_NULL_HANDLE for every handle type above.
const NullHandle = 0

type (
	Bool32                 uint32
	DeviceSize             uint64
	Flags                  uint32
	SampleCountFlags       Flags
	InstanceCreateFlags    Flags
	DeviceCreateFlags      Flags
	DeviceQueueCreateFlags Flags
	MemoryPropertyFlags    Flags
	MemoryHeapFlags        Flags
	StructureType          int32
	PhysicalDeviceType     int32
	QueueFlags             Flags
)

const (
	False Bool32 = 0
	True  Bool32 = 1
)

const (
	StructureTypeApplicationInfo       StructureType = 0
	StructureTypeInstanceCreateInfo    StructureType = 1
	StructureTypeDeviceQueueCreateInfo StructureType = 2
	StructureTypeDeviceCreateInfo      StructureType = 3
)

// InstanceCreateEnumeratePortabilityBitKHR is
// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR.
const InstanceCreateEnumeratePortabilityBitKHR InstanceCreateFlags = 0x00000001

const (
	PhysicalDeviceTypeOther         PhysicalDeviceType = 0
	PhysicalDeviceTypeIntegratedGPU PhysicalDeviceType = 1
	PhysicalDeviceTypeDiscreteGPU   PhysicalDeviceType = 2
	PhysicalDeviceTypeVirtualGPU    PhysicalDeviceType = 3
	PhysicalDeviceTypeCPU           PhysicalDeviceType = 4
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case PhysicalDeviceTypeIntegratedGPU:
		return "Integrated GPU"
	case PhysicalDeviceTypeDiscreteGPU:
		return "Discrete GPU"
	case PhysicalDeviceTypeVirtualGPU:
		return "Virtual GPU"
	case PhysicalDeviceTypeCPU:
		return "CPU"
	default:
		return "Other"
	}
}

const (
	QueueGraphicsBit      QueueFlags = 0x00000001
	QueueComputeBit       QueueFlags = 0x00000002
	QueueTransferBit      QueueFlags = 0x00000004
	QueueSparseBindingBit QueueFlags = 0x00000008
	QueueProtectedBit     QueueFlags = 0x00000010
)

var queueFlagNames = []struct {
	bit  QueueFlags
	name string
}{
	{QueueGraphicsBit, "GRAPHICS"},
	{QueueComputeBit, "COMPUTE"},
	{QueueTransferBit, "TRANSFER"},
	{QueueSparseBindingBit, "SPARSE_BINDING"},
	{QueueProtectedBit, "PROTECTED"},
}

// Names lists the set bits by name, in bit order. Unknown bits are dropped.
func (f QueueFlags) Names() []string {
	var names []string
	for _, n := range queueFlagNames {
		if f&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

const (
	MemoryPropertyDeviceLocalBit     MemoryPropertyFlags = 0x00000001
	MemoryPropertyHostVisibleBit     MemoryPropertyFlags = 0x00000002
	MemoryPropertyHostCoherentBit    MemoryPropertyFlags = 0x00000004
	MemoryPropertyHostCachedBit      MemoryPropertyFlags = 0x00000008
	MemoryPropertyLazilyAllocatedBit MemoryPropertyFlags = 0x00000010

	MemoryHeapDeviceLocalBit MemoryHeapFlags = 0x00000001
)

// Fixed array sizes from vulkan_core.h.
const (
	MaxPhysicalDeviceNameSize = 256
	UUIDSize                  = 16
	MaxExtensionNameSize      = 256
	MaxDescriptionSize        = 256
	MaxMemoryTypes            = 32
	MaxMemoryHeaps            = 16
)

// Well-known names.
const (
	KhronosValidationLayerName          = "VK_LAYER_KHRONOS_validation"
	KHRPortabilityEnumerationExtension  = "VK_KHR_portability_enumeration"
	KHRPortabilitySubsetExtension       = "VK_KHR_portability_subset"
	KHRSurfaceExtension                 = "VK_KHR_surface"
	KHRSwapchainExtension               = "VK_KHR_swapchain"
	EXTDebugUtilsExtension              = "VK_EXT_debug_utils"
	KHRGetPhysicalDeviceProperties2Name = "VK_KHR_get_physical_device_properties2"
)
