package vulkan

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"vulkan-bindings/internal/vktest"
	"vulkan-bindings/vk"
)

func TestResultError(t *testing.T) {
	err := check("vkCreateInstance", vk.ErrorIncompatibleDriver)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got != "vulkan: vkCreateInstance: VK_ERROR_INCOMPATIBLE_DRIVER" {
		t.Errorf("message: got %q", got)
	}

	wrapped := fmt.Errorf("open: %w", err)
	if !errors.Is(wrapped, &ResultError{Result: vk.ErrorIncompatibleDriver}) {
		t.Error("errors.Is should match on the code alone")
	}
	if errors.Is(wrapped, &ResultError{Result: vk.ErrorDeviceLost}) {
		t.Error("different codes must not match")
	}
	if !errors.Is(wrapped, vk.ErrorIncompatibleDriver) {
		t.Error("errors.Is should reach the raw code")
	}
	if r, ok := ResultOf(wrapped); !ok || r != vk.ErrorIncompatibleDriver {
		t.Errorf("ResultOf: got %s, %v", r, ok)
	}
	if _, ok := ResultOf(errors.New("other")); ok {
		t.Error("ResultOf matched a foreign error")
	}

	if check("vkTest", vk.Success) != nil {
		t.Error("VK_SUCCESS is not an error")
	}
	for _, r := range []vk.Result{vk.Incomplete, vk.NotReady, vk.SuboptimalKHR} {
		if check("vkTest", r) == nil {
			t.Errorf("%s must be reported", r)
		}
	}
	if got := (&ResultError{Result: vk.ErrorDeviceLost}).Error(); got != "vulkan: VK_ERROR_DEVICE_LOST" {
		t.Errorf("message without op: got %q", got)
	}
}

func TestInstanceCreateFlags(t *testing.T) {
	tests := []struct {
		flags InstanceCreateFlags
		want  string
	}{
		{0, "0"},
		{EnumeratePortability, "ENUMERATE_PORTABILITY"},
		{EnumeratePortability | 0x10, "ENUMERATE_PORTABILITY|0x10"},
		{0x8, "0x8"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("%d: expected %q, got %q", uint32(tt.flags), tt.want, got)
		}
	}
	if !(EnumeratePortability | 0x4).Has(EnumeratePortability) {
		t.Error("Has missed a set bit")
	}
	if InstanceCreateFlags(0).Has(EnumeratePortability) {
		t.Error("Has matched a clear bit")
	}
}

func TestAPIVersion(t *testing.T) {
	v := APIVersion(vk.MakeAPIVersion(0, 1, 3, 250))
	if v.Major() != 1 || v.Minor() != 3 || v.Patch() != 250 || v.Variant() != 0 {
		t.Errorf("components: %d.%d.%d variant %d", v.Major(), v.Minor(), v.Patch(), v.Variant())
	}
	if v.String() != "1.3.250" {
		t.Errorf("string: got %q", v)
	}
	if !v.AtLeast(APIVersion(vk.APIVersion13)) || v.AtLeast(APIVersion(vk.MakeAPIVersion(0, 1, 4, 0))) {
		t.Error("AtLeast")
	}

	tests := []struct {
		in   string
		want APIVersion
		ok   bool
	}{
		{"1.3", APIVersion(vk.APIVersion13), true},
		{"1.2.198", APIVersion(vk.MakeAPIVersion(0, 1, 2, 198)), true},
		{"1.0.0", APIVersion(vk.APIVersion10), true},
		{"1", 0, false},
		{"1.1024.0", 0, false},
		{"one.two", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseAPIVersion(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseAPIVersion(%q) = %s, %v", tt.in, got, err)
		}
	}
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	drv := vktest.New()
	drv.AddGPU(vktest.NewGPU("Fake", vk.PhysicalDeviceTypeVirtualGPU))
	drv.NullDevices = 1

	instance, err := NewInstance(drv, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := instance.EnumeratePhysicalDevices(); err != nil {
		t.Fatal(err)
	}
	instance.Destroy()

	for _, msg := range []string{"created instance", "discarding null physical device", "enumerated physical devices", "destroyed instance"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("expected one %q entry", msg)
		}
	}
	if logs.FilterLevelExact(zap.WarnLevel).Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.FilterLevelExact(zap.WarnLevel).Len())
	}

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("SetLogger(nil) must leave a usable logger")
	}
	Logger().Info("dropped")
}
