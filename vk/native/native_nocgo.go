//go:build !cgo

package native

import "vulkan-bindings/vk"

// Load always fails without cgo: the loader can only be reached through C.
func Load() (vk.API, error) {
	return nil, ErrUnsupported
}
