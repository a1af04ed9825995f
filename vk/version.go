package vk

// MakeAPIVersion packs a version the way VK_MAKE_API_VERSION does.
func MakeAPIVersion(variant, major, minor, patch uint32) uint32 {
	return variant<<29 | major<<22 | minor<<12 | patch
}

func APIVersionVariant(v uint32) uint32 { return v >> 29 }
func APIVersionMajor(v uint32) uint32   { return (v >> 22) & 0x7F }
func APIVersionMinor(v uint32) uint32   { return (v >> 12) & 0x3FF }
func APIVersionPatch(v uint32) uint32   { return v & 0xFFF }

var (
	APIVersion10 = MakeAPIVersion(0, 1, 0, 0)
	APIVersion11 = MakeAPIVersion(0, 1, 1, 0)
	APIVersion12 = MakeAPIVersion(0, 1, 2, 0)
	APIVersion13 = MakeAPIVersion(0, 1, 3, 0)
)
