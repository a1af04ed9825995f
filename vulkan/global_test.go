package vulkan

import (
	"errors"
	"slices"
	"testing"

	"vulkan-bindings/internal/vktest"
	"vulkan-bindings/vk"
)

func TestInstanceVersion(t *testing.T) {
	drv := vktest.New()
	v, err := InstanceVersion(drv)
	if err != nil || v != APIVersion(vk.APIVersion13) {
		t.Errorf("expected 1.3.0, got %s, %v", v, err)
	}

	// a 1.0 loader has no vkEnumerateInstanceVersion
	drv.Version = 0
	v, err = InstanceVersion(drv)
	if err != nil || v != APIVersion(vk.APIVersion10) {
		t.Errorf("expected 1.0.0, got %s, %v", v, err)
	}

	drv.Fail(vktest.EnumerateInstanceVersion, vk.ErrorOutOfHostMemory)
	if _, err := InstanceVersion(drv); !errors.Is(err, vk.ErrorOutOfHostMemory) {
		t.Errorf("expected VK_ERROR_OUT_OF_HOST_MEMORY, got %v", err)
	}
}

func TestInstanceExtensionsAndLayers(t *testing.T) {
	drv := vktest.New()

	exts, err := EnumerateInstanceExtensionProperties(drv, "")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for i := range exts {
		got = append(got, exts[i].Name())
	}
	if !slices.Equal(got, drv.InstanceExtensions) {
		t.Errorf("expected %v, got %v", drv.InstanceExtensions, got)
	}

	exts, err = EnumerateInstanceExtensionProperties(drv, vk.KhronosValidationLayerName)
	if err != nil || len(exts) != 1 || exts[0].Name() != vk.EXTDebugUtilsExtension {
		t.Errorf("layer extensions: %v, %v", exts, err)
	}

	layers, err := EnumerateInstanceLayerProperties(drv)
	if err != nil || len(layers) != 1 || layers[0].Desc() != "Khronos Validation Layer" {
		t.Errorf("layers: %v, %v", layers, err)
	}

	ok, err := LayerAvailable(drv, vk.KhronosValidationLayerName)
	if err != nil || !ok {
		t.Errorf("validation layer: %v, %v", ok, err)
	}
	ok, err = LayerAvailable(drv, "VK_LAYER_missing")
	if err != nil || ok {
		t.Errorf("missing layer: %v, %v", ok, err)
	}

	missing, err := MissingInstanceExtensions(drv, vk.KHRSurfaceExtension, "VK_KHR_win32_surface", "VK_KHR_xcb_surface")
	if err != nil || !slices.Equal(missing, []string{"VK_KHR_win32_surface", "VK_KHR_xcb_surface"}) {
		t.Errorf("missing: %v, %v", missing, err)
	}
	if drv.Live() != 0 {
		t.Errorf("%d allocations leaked", drv.Live())
	}
}

func TestNoInstanceLayers(t *testing.T) {
	drv := vktest.New()
	drv.InstanceLayers = nil

	layers, err := EnumerateInstanceLayerProperties(drv)
	if err != nil || layers != nil {
		t.Errorf("expected no layers, got %v, %v", layers, err)
	}
	if drv.Calls(vktest.EnumerateInstanceLayerProperties) != 1 {
		t.Errorf("expected a single call, got %d", drv.Calls(vktest.EnumerateInstanceLayerProperties))
	}
	if drv.Allocs() != 0 {
		t.Errorf("expected no allocations, got %d", drv.Allocs())
	}
}

func TestInstanceExtensionsIncomplete(t *testing.T) {
	drv := vktest.New()
	drv.FailNth(vktest.EnumerateInstanceExtensionProperties, 2, vk.Incomplete)

	exts, err := EnumerateInstanceExtensionProperties(drv, "")
	if exts != nil {
		t.Errorf("expected no partial result, got %d entries", len(exts))
	}
	var re *ResultError
	if !errors.As(err, &re) || re.Result != vk.Incomplete || re.Op != "vkEnumerateInstanceExtensionProperties" {
		t.Errorf("expected VK_INCOMPLETE from vkEnumerateInstanceExtensionProperties, got %v", err)
	}
}
