package vulkan

import (
	"fmt"
	"strings"

	"github.com/coreos/go-semver/semver"

	"vulkan-bindings/vk"
)

// APIVersion is a packed Vulkan version (VK_MAKE_API_VERSION layout).
type APIVersion uint32

func (v APIVersion) Variant() uint32 { return vk.APIVersionVariant(uint32(v)) }
func (v APIVersion) Major() uint32   { return vk.APIVersionMajor(uint32(v)) }
func (v APIVersion) Minor() uint32   { return vk.APIVersionMinor(uint32(v)) }
func (v APIVersion) Patch() uint32   { return vk.APIVersionPatch(uint32(v)) }

// Semver drops the variant, which is zero for every Vulkan release.
func (v APIVersion) Semver() semver.Version {
	return semver.Version{
		Major: int64(v.Major()),
		Minor: int64(v.Minor()),
		Patch: int64(v.Patch()),
	}
}

func (v APIVersion) String() string {
	return v.Semver().String()
}

// AtLeast compares major.minor.patch; the variant is ignored.
func (v APIVersion) AtLeast(other APIVersion) bool {
	return !v.Semver().LessThan(other.Semver())
}

// ParseAPIVersion accepts "1.3" or "1.3.250".
func ParseAPIVersion(s string) (APIVersion, error) {
	if strings.Count(s, ".") == 1 {
		s += ".0"
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return 0, fmt.Errorf("parse api version: %w", err)
	}
	if sv.Major < 0 || sv.Major > 0x7F || sv.Minor < 0 || sv.Minor > 0x3FF || sv.Patch < 0 || sv.Patch > 0xFFF {
		return 0, fmt.Errorf("parse api version: %s out of range", s)
	}
	return APIVersion(vk.MakeAPIVersion(0, uint32(sv.Major), uint32(sv.Minor), uint32(sv.Patch))), nil
}
