// Package native binds vk.API to the system Vulkan loader through cgo.
// Building it requires the Vulkan headers and a loader library
// (libvulkan-dev on Debian, vulkan-loader on Homebrew).
package native

import "errors"

var (
	// ErrUnsupported is returned by Load when the package was built without cgo.
	ErrUnsupported = errors.New("native: vulkan loader requires cgo")

	// ErrLayoutMismatch is returned by Load when a vk record does not have
	// the size of its C counterpart.
	ErrLayoutMismatch = errors.New("native: record layout mismatch")
)
