// Package vulkan wraps the raw vk bindings with ownership-aware handle types.
//
// # Ownership
//
// Handles the caller creates (instances, devices) come back as Owned*
// values that destroy the native object exactly once, on Destroy. Borrowed
// views (UnownedInstance, UnownedDevice) and enumerated physical devices
// never destroy anything. At most one owning wrapper exists per handle:
// AdoptInstance and AdoptDevice refuse handles that are already owned.
//
//	api, err := native.Load()
//	if err != nil {
//	    return err
//	}
//	instance, err := vulkan.NewInstance(api, 0, nil, nil)
//	if err != nil {
//	    return err
//	}
//	defer instance.Destroy()
//
//	devices, err := instance.EnumeratePhysicalDevices()
//	for _, d := range devices {
//	    fmt.Println(d.Name())
//	}
//
// # Errors
//
// Every native call that returns VkResult is checked; any code other than
// VK_SUCCESS becomes a *ResultError carrying it. A failed constructor
// returns a nil wrapper, so there is nothing to destroy.
//
// # Strings
//
// Layer and extension names are copied into unmanaged memory obtained from
// the vk.API allocator for the duration of the call that needs them, and
// freed before the wrapper method returns.
package vulkan
