package vulkan

import (
	"fmt"
	"strings"

	"vulkan-bindings/vk"
)

// InstanceCreateFlags loosely maps to VkInstanceCreateFlags. Combine bits with |.
type InstanceCreateFlags vk.InstanceCreateFlags

const (
	// EnumeratePortability lets the loader list portability drivers such
	// as MoltenVK. It needs the VK_KHR_portability_enumeration extension.
	EnumeratePortability = InstanceCreateFlags(vk.InstanceCreateEnumeratePortabilityBitKHR)
)

// Has reports whether every bit in bits is set.
func (f InstanceCreateFlags) Has(bits InstanceCreateFlags) bool {
	return f&bits == bits
}

func (f InstanceCreateFlags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	if f.Has(EnumeratePortability) {
		parts = append(parts, "ENUMERATE_PORTABILITY")
		f &^= EnumeratePortability
	}
	if f != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(f)))
	}
	return strings.Join(parts, "|")
}
