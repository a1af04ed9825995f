package vulkan

import (
	"unsafe"

	"vulkan-bindings/vk"
)

// cString copies s into unmanaged memory and appends the terminator.
func cString(alloc vk.Allocator, s string) unsafe.Pointer {
	p := alloc.Malloc(uintptr(len(s) + 1))
	buf := unsafe.Slice((*byte)(p), len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0
	return p
}

// withCStrings converts strs to C strings, calls body with their pointers
// in order and frees every string once body returns, panics included.
func withCStrings(alloc vk.Allocator, strs []string, body func(ptrs []unsafe.Pointer) error) error {
	ptrs := make([]unsafe.Pointer, 0, len(strs))
	defer func() {
		for _, p := range ptrs {
			alloc.Free(p)
		}
	}()
	for _, s := range strs {
		ptrs = append(ptrs, cString(alloc, s))
	}
	return body(ptrs)
}

// withCStringArray is withCStrings for the `const char* const*` plus count
// shape that create infos take. The pointer array is itself unmanaged
// memory; it is nil when strs is empty.
func withCStringArray(alloc vk.Allocator, strs []string, body func(array unsafe.Pointer, count uint32) error) error {
	return withCStrings(alloc, strs, func(ptrs []unsafe.Pointer) error {
		if len(ptrs) == 0 {
			return body(nil, 0)
		}
		array := alloc.Malloc(uintptr(len(ptrs)) * unsafe.Sizeof(unsafe.Pointer(nil)))
		defer alloc.Free(array)
		copy(unsafe.Slice((*unsafe.Pointer)(array), len(ptrs)), ptrs)
		return body(array, uint32(len(ptrs)))
	})
}

// withCString scopes a single C string to body.
func withCString(alloc vk.Allocator, s string, body func(p unsafe.Pointer) error) error {
	p := cString(alloc, s)
	defer alloc.Free(p)
	return body(p)
}

// withOptionalCString passes nil for "" (the C API's "no name").
func withOptionalCString(alloc vk.Allocator, s string, body func(p unsafe.Pointer) error) error {
	if s == "" {
		return body(nil)
	}
	return withCString(alloc, s, body)
}
