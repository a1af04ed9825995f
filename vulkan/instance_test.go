package vulkan

import (
	"errors"
	"slices"
	"testing"

	"vulkan-bindings/internal/vktest"
	"vulkan-bindings/vk"
)

func TestEmptyInstance(t *testing.T) {
	drv := vktest.New()

	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if instance.Handle() == vk.NullHandle {
		t.Fatal("expected a non-null handle")
	}
	if info := drv.LastInstanceInfo(); info.App != nil || len(info.Layers) != 0 || len(info.Extensions) != 0 {
		t.Errorf("unexpected create info: %+v", info)
	}

	instance.Destroy()
	if drv.Calls(vktest.DestroyInstance) != 1 {
		t.Errorf("expected one destroy, got %d", drv.Calls(vktest.DestroyInstance))
	}
	if drv.LiveInstances() != 0 || drv.Live() != 0 {
		t.Errorf("leaked %d instances, %d allocations", drv.LiveInstances(), drv.Live())
	}
}

func TestInstanceDestroyAtMostOnce(t *testing.T) {
	drv := vktest.New()
	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	handle := instance.Handle()

	instance.Destroy()
	instance.Destroy()

	if drv.Calls(vktest.DestroyInstance) != 1 || drv.BadDestroys() != 0 {
		t.Errorf("destroy calls=%d bad=%d", drv.Calls(vktest.DestroyInstance), drv.BadDestroys())
	}
	if instance.Handle() != vk.NullHandle {
		t.Error("destroyed instance still reports its handle")
	}
	if _, err := instance.EnumeratePhysicalDevices(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
	if isOwned(instanceKey(handle)) {
		t.Error("destroyed handle still registered")
	}

	var none *OwnedInstance
	none.Destroy()
}

func TestInstanceCreateFailure(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*vktest.Driver)
		config InstanceConfig
		result vk.Result
	}{
		{
			name:   "injected",
			setup:  func(d *vktest.Driver) { d.Fail(vktest.CreateInstance, vk.ErrorIncompatibleDriver) },
			result: vk.ErrorIncompatibleDriver,
		},
		{
			name:   "missing layer",
			config: InstanceConfig{Layers: []string{"VK_LAYER_does_not_exist"}},
			result: vk.ErrorLayerNotPresent,
		},
		{
			name:   "missing extension",
			config: InstanceConfig{Extensions: []string{"VK_KHR_does_not_exist"}},
			result: vk.ErrorExtensionNotPresent,
		},
		{
			name: "api version lookup",
			setup: func(d *vktest.Driver) {
				d.Fail(vktest.EnumerateInstanceVersion, vk.ErrorOutOfHostMemory)
			},
			config: InstanceConfig{App: &ApplicationConfig{Name: "demo"}},
			result: vk.ErrorOutOfHostMemory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := vktest.New()
			if tt.setup != nil {
				tt.setup(drv)
			}

			instance, err := NewInstanceWithConfig(drv, tt.config)
			if instance != nil {
				t.Error("expected a nil wrapper")
			}
			if r, ok := ResultOf(err); !ok || r != tt.result {
				t.Fatalf("expected %s, got %v", tt.result, err)
			}

			// a nil wrapper is safe to Destroy and never reaches the driver
			instance.Destroy()
			if drv.Calls(vktest.DestroyInstance) != 0 {
				t.Error("destroy called after failed create")
			}
			if drv.Live() != 0 {
				t.Errorf("%d allocations leaked", drv.Live())
			}
		})
	}
}

func TestInstanceNullHandle(t *testing.T) {
	drv := vktest.New()
	drv.ReturnNullInstance = true

	instance, err := NewInstance(drv, 0, nil, nil)
	if instance != nil || !errors.Is(err, ErrNullHandle) {
		t.Fatalf("expected ErrNullHandle, got %v, %v", instance, err)
	}
	if drv.Calls(vktest.DestroyInstance) != 0 {
		t.Error("destroy called for a null handle")
	}
}

func TestInstanceLayersAndExtensions(t *testing.T) {
	drv := vktest.New()

	layers := []string{vk.KhronosValidationLayerName}
	extensions := []string{vk.KHRSurfaceExtension, vk.EXTDebugUtilsExtension, vk.KHRPortabilityEnumerationExtension}
	instance, err := NewInstance(drv, EnumeratePortability, layers, extensions)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()

	info := drv.LastInstanceInfo()
	if !slices.Equal(info.Layers, layers) {
		t.Errorf("layers: expected %v, got %v", layers, info.Layers)
	}
	if !slices.Equal(info.Extensions, extensions) {
		t.Errorf("extensions: expected %v, got %v", extensions, info.Extensions)
	}
	if info.Flags != vk.InstanceCreateEnumeratePortabilityBitKHR {
		t.Errorf("flags: got %#x", info.Flags)
	}
	if drv.Live() != 0 {
		t.Errorf("%d allocations outlived the create call", drv.Live())
	}
}

func TestInstanceApplicationInfo(t *testing.T) {
	drv := vktest.New()
	drv.Version = vk.MakeAPIVersion(0, 1, 2, 198)

	instance, err := NewInstanceWithConfig(drv, InstanceConfig{
		App: &ApplicationConfig{Name: "triangle", Version: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()

	app := drv.LastInstanceInfo().App
	if app == nil {
		t.Fatal("expected application info")
	}
	if app.Name != "triangle" || app.Version != 4 {
		t.Errorf("application: %+v", app)
	}
	if app.EngineName != DefaultEngineName || app.EngineVersion != 1 {
		t.Errorf("engine defaults: %+v", app)
	}
	if app.APIVersion != drv.Version {
		t.Errorf("api version: expected loader version %#x, got %#x", drv.Version, app.APIVersion)
	}

	explicit, err := NewInstanceWithConfig(drv, InstanceConfig{
		App: &ApplicationConfig{Name: "x", EngineName: "engine", EngineVersion: 9, APIVersion: APIVersion(vk.APIVersion11)},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer explicit.Destroy()
	app = drv.LastInstanceInfo().App
	if app.EngineName != "engine" || app.EngineVersion != 9 || app.APIVersion != vk.APIVersion11 {
		t.Errorf("explicit: %+v", app)
	}
}

func TestEnumeratePhysicalDevices(t *testing.T) {
	drv := vktest.New()
	gpus := []*vktest.GPU{
		drv.AddGPU(vktest.NewGPU("Fake Discrete", vk.PhysicalDeviceTypeDiscreteGPU)),
		drv.AddGPU(vktest.NewGPU("Fake Integrated", vk.PhysicalDeviceTypeIntegratedGPU)),
	}

	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()

	devices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != len(gpus) {
		t.Fatalf("expected %d devices, got %d", len(gpus), len(devices))
	}
	for i, d := range devices {
		if d.Handle() != gpus[i].Handle() {
			t.Errorf("device %d: handle mismatch", i)
		}
	}
	if drv.Calls(vktest.EnumeratePhysicalDevices) != 2 {
		t.Errorf("expected two enumerate calls, got %d", drv.Calls(vktest.EnumeratePhysicalDevices))
	}

	borrowed, err := instance.UnownedHandle().EnumeratePhysicalDevices()
	if err != nil || len(borrowed) != len(devices) {
		t.Errorf("borrowed view: %d devices, %v", len(borrowed), err)
	}
}

func TestEnumeratePhysicalDevicesNone(t *testing.T) {
	drv := vktest.New()
	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()

	devices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 0 {
		t.Errorf("expected no devices, got %d", len(devices))
	}
	if drv.Calls(vktest.EnumeratePhysicalDevices) != 1 {
		t.Errorf("expected a single count call, got %d", drv.Calls(vktest.EnumeratePhysicalDevices))
	}
}

func TestEnumeratePhysicalDevicesDropsNull(t *testing.T) {
	drv := vktest.New()
	gpu := drv.AddGPU(vktest.NewGPU("Fake", vk.PhysicalDeviceTypeCPU))
	drv.NullDevices = 2

	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()

	devices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 1 || devices[0].Handle() != gpu.Handle() {
		t.Errorf("expected only the real device, got %v", devices)
	}
}

func TestEnumeratePhysicalDevicesFailure(t *testing.T) {
	drv := vktest.New()
	drv.AddGPU(vktest.NewGPU("Fake", vk.PhysicalDeviceTypeDiscreteGPU))
	drv.FailNth(vktest.EnumeratePhysicalDevices, 2, vk.Incomplete)

	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()

	devices, err := instance.EnumeratePhysicalDevices()
	if devices != nil || !errors.Is(err, vk.Incomplete) {
		t.Errorf("expected VK_INCOMPLETE failure, got %v, %v", devices, err)
	}
}

func TestBorrowInstanceNeverDestroys(t *testing.T) {
	drv := vktest.New()
	owned, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	view := BorrowInstance(drv, owned.Handle())
	if view.Handle() != owned.Handle() {
		t.Error("borrowed view has a different handle")
	}
	var _ Instance = view
	var _ Instance = owned

	owned.Destroy()
	if drv.Calls(vktest.DestroyInstance) != 1 {
		t.Errorf("expected one destroy, got %d", drv.Calls(vktest.DestroyInstance))
	}

	if _, err := BorrowInstance(drv, vk.NullHandle).EnumeratePhysicalDevices(); !errors.Is(err, ErrNullHandle) {
		t.Errorf("expected ErrNullHandle, got %v", err)
	}
}

func TestAdoptInstance(t *testing.T) {
	drv := vktest.New()
	owned, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	handle := owned.Handle()

	if _, err := AdoptInstance(drv, handle); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("adopting an owned handle: expected ErrAlreadyOwned, got %v", err)
	}
	if _, err := AdoptInstance(drv, vk.NullHandle); !errors.Is(err, ErrNullHandle) {
		t.Fatalf("adopting null: expected ErrNullHandle, got %v", err)
	}

	// once released, the handle value may be adopted again
	owned.Destroy()
	var raw vk.Instance
	if r := drv.CreateInstance(&vk.InstanceCreateInfo{SType: vk.StructureTypeInstanceCreateInfo}, &raw); r != vk.Success {
		t.Fatal(r)
	}
	adopted, err := AdoptInstance(drv, raw)
	if err != nil {
		t.Fatal(err)
	}
	if adopted.Handle() != raw {
		t.Error("adopted wrapper reports a different handle")
	}
	adopted.Destroy()
	if drv.LiveInstances() != 0 {
		t.Errorf("%d instances still live", drv.LiveInstances())
	}
}

func TestDefaultInstanceConfig(t *testing.T) {
	config := DefaultInstanceConfig()
	if len(config.Layers) != 0 || config.App != nil {
		t.Errorf("unexpected defaults: %+v", config)
	}
	if config.Flags.Has(EnumeratePortability) != slices.Contains(config.Extensions, vk.KHRPortabilityEnumerationExtension) {
		t.Error("portability flag and extension must be enabled together")
	}
}
