package vulkan

import (
	"errors"
	"unsafe"

	"vulkan-bindings/vk"
)

// Entry points that are not tied to an instance.

// InstanceVersion returns the highest instance-level API version the loader
// supports. A 1.0 loader without vkEnumerateInstanceVersion reports 1.0.
func InstanceVersion(api vk.API) (APIVersion, error) {
	var v uint32
	err := check("vkEnumerateInstanceVersion", api.EnumerateInstanceVersion(&v))
	if errors.Is(err, vk.ErrorFeatureNotPresent) {
		return APIVersion(vk.APIVersion10), nil
	}
	if err != nil {
		return 0, err
	}
	return APIVersion(v), nil
}

// EnumerateInstanceExtensionProperties lists instance extensions, either
// those of the implementation and implicit layers (layerName "") or those
// of one layer.
func EnumerateInstanceExtensionProperties(api vk.API, layerName string) ([]vk.ExtensionProperties, error) {
	var props []vk.ExtensionProperties
	err := withOptionalCString(api, layerName, func(layer unsafe.Pointer) error {
		var err error
		props, err = enumerate("vkEnumerateInstanceExtensionProperties", func(count *uint32, out *vk.ExtensionProperties) vk.Result {
			return api.EnumerateInstanceExtensionProperties(layer, count, out)
		})
		return err
	})
	return props, err
}

func EnumerateInstanceLayerProperties(api vk.API) ([]vk.LayerProperties, error) {
	return enumerate("vkEnumerateInstanceLayerProperties", func(count *uint32, out *vk.LayerProperties) vk.Result {
		return api.EnumerateInstanceLayerProperties(count, out)
	})
}

// LayerAvailable reports whether the loader knows an instance layer by name.
func LayerAvailable(api vk.API, name string) (bool, error) {
	layers, err := EnumerateInstanceLayerProperties(api)
	if err != nil {
		return false, err
	}
	for i := range layers {
		if layers[i].Name() == name {
			return true, nil
		}
	}
	return false, nil
}

// MissingInstanceExtensions returns the names in want that the loader does
// not offer, in the order given.
func MissingInstanceExtensions(api vk.API, want ...string) ([]string, error) {
	props, err := EnumerateInstanceExtensionProperties(api, "")
	if err != nil {
		return nil, err
	}
	return missingNames(props, want), nil
}

func missingNames(props []vk.ExtensionProperties, want []string) []string {
	have := make(map[string]struct{}, len(props))
	for i := range props {
		have[props[i].Name()] = struct{}{}
	}
	var missing []string
	for _, name := range want {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
