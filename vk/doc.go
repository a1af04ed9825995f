// Package vk is the raw passthrough layer: Vulkan handle types, result
// codes, and records laid out exactly as in vulkan_core.h, plus the API
// interface describing the native entry points.
//
// Nothing here manages lifetimes. Package vulkan builds ownership-tracking
// wrappers on top of it, and package vk/native supplies the cgo-backed API
// implementation that talks to the system loader.
package vk
