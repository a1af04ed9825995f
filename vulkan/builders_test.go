package vulkan

import (
	"fmt"
	"slices"
	"testing"
	"unsafe"

	"vulkan-bindings/internal/vktest"
	"vulkan-bindings/vk"
)

func readCStrings(array unsafe.Pointer, count uint32) []string {
	if count == 0 {
		return nil
	}
	var out []string
	for _, p := range unsafe.Slice((*unsafe.Pointer)(array), count) {
		n := 0
		for *(*byte)(unsafe.Add(p, n)) != 0 {
			n++
		}
		out = append(out, string(unsafe.Slice((*byte)(p), n)))
	}
	return out
}

func TestInstanceCreateInfoRoundTrip(t *testing.T) {
	for _, tc := range []struct{ layers, extensions int }{
		{0, 0}, {1, 0}, {0, 1}, {2, 3}, {8, 12},
	} {
		t.Run(fmt.Sprintf("%d_%d", tc.layers, tc.extensions), func(t *testing.T) {
			drv := vktest.New()
			layers := names(tc.layers)
			extensions := make([]string, tc.extensions)
			for i := range extensions {
				extensions[i] = fmt.Sprintf("VK_EXT_test_%d", i)
			}

			err := withCStringArray(drv, layers, func(lp unsafe.Pointer, lc uint32) error {
				return withCStringArray(drv, extensions, func(ep unsafe.Pointer, ec uint32) error {
					info := NewInstanceCreateInfo(vk.InstanceCreateFlags(EnumeratePortability), nil, lc, lp, ec, ep)

					if info.SType != vk.StructureTypeInstanceCreateInfo {
						t.Errorf("SType: got %d", info.SType)
					}
					if info.PNext != nil || info.PApplicationInfo != nil {
						t.Error("expected nil PNext and PApplicationInfo")
					}
					if info.Flags != vk.InstanceCreateEnumeratePortabilityBitKHR {
						t.Errorf("Flags: got %#x", info.Flags)
					}
					if got := readCStrings(info.PpEnabledLayerNames, info.EnabledLayerCount); !slices.Equal(got, layers) {
						t.Errorf("layers: expected %v, got %v", layers, got)
					}
					if got := readCStrings(info.PpEnabledExtensionNames, info.EnabledExtensionCount); !slices.Equal(got, extensions) {
						t.Errorf("extensions: expected %v, got %v", extensions, got)
					}
					if int(info.EnabledLayerCount) != tc.layers || int(info.EnabledExtensionCount) != tc.extensions {
						t.Errorf("counts: got %d/%d", info.EnabledLayerCount, info.EnabledExtensionCount)
					}
					return nil
				})
			})
			if err != nil {
				t.Fatal(err)
			}
			if drv.Live() != 0 {
				t.Errorf("%d allocations leaked", drv.Live())
			}
		})
	}
}

func TestApplicationInfo(t *testing.T) {
	drv := vktest.New()
	err := withCString(drv, "demo", func(app unsafe.Pointer) error {
		info := NewApplicationInfo(app, 3, nil, 7, vk.APIVersion12)
		if info.SType != vk.StructureTypeApplicationInfo || info.PNext != nil {
			t.Errorf("header: %d %v", info.SType, info.PNext)
		}
		if info.PApplicationName != app || info.PEngineName != nil {
			t.Error("name pointers not stored")
		}
		if info.ApplicationVersion != 3 || info.EngineVersion != 7 || info.APIVersion != vk.APIVersion12 {
			t.Errorf("versions: %d %d %#x", info.ApplicationVersion, info.EngineVersion, info.APIVersion)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDeviceCreateInfo(t *testing.T) {
	priorities := []float32{1, 0.5}
	queues := []vk.DeviceQueueCreateInfo{
		NewDeviceQueueCreateInfo(0, priorities),
		NewDeviceQueueCreateInfo(2, priorities[:1]),
	}
	if queues[0].QueueCount != 2 || queues[0].PQueuePriorities != &priorities[0] {
		t.Errorf("queue 0: %+v", queues[0])
	}
	if queues[1].QueueFamilyIndex != 2 || queues[1].QueueCount != 1 {
		t.Errorf("queue 1: %+v", queues[1])
	}
	if empty := NewDeviceQueueCreateInfo(0, nil); empty.PQueuePriorities != nil || empty.QueueCount != 0 {
		t.Errorf("empty queue: %+v", empty)
	}

	features := &vk.PhysicalDeviceFeatures{SamplerAnisotropy: vk.True}
	info := NewDeviceCreateInfo(queues, 0, nil, 0, nil, features)
	if info.SType != vk.StructureTypeDeviceCreateInfo {
		t.Errorf("SType: got %d", info.SType)
	}
	if info.QueueCreateInfoCount != 2 || info.PQueueCreateInfos != &queues[0] {
		t.Error("queue infos not stored")
	}
	if info.PEnabledFeatures != features {
		t.Error("features not stored")
	}

	if none := NewDeviceCreateInfo(nil, 0, nil, 0, nil, nil); none.PQueueCreateInfos != nil || none.QueueCreateInfoCount != 0 {
		t.Errorf("no queues: %+v", none)
	}
}
