package vulkan

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"vulkan-bindings/vk"
)

// DefaultEngineName is reported to the driver when ApplicationConfig
// leaves EngineName empty.
const DefaultEngineName = "vulkan-bindings"

// Instance is anything that exposes a VkInstance. OwnedInstance and
// UnownedInstance both satisfy it.
type Instance interface {
	Handle() vk.Instance
	EnumeratePhysicalDevices() ([]PhysicalDevice, error)
}

// ApplicationConfig describes the application to the driver, which may use
// it for per-application tuning.
type ApplicationConfig struct {
	Name    string
	Version uint32

	// EngineName defaults to DefaultEngineName.
	EngineName string
	// EngineVersion defaults to 1.
	EngineVersion uint32
	// APIVersion is the highest Vulkan version the application uses.
	// Zero means the loader's own instance version.
	APIVersion APIVersion
}

type InstanceConfig struct {
	Flags      InstanceCreateFlags
	Layers     []string
	Extensions []string

	// App is optional; nil creates the instance without VkApplicationInfo.
	App *ApplicationConfig
}

// DefaultInstanceConfig enables no layers. On macOS it turns on portability
// enumeration, without which MoltenVK devices are not listed.
func DefaultInstanceConfig() InstanceConfig {
	config := InstanceConfig{}
	if runtime.GOOS == "darwin" {
		config.Flags = EnumeratePortability
		config.Extensions = []string{vk.KHRPortabilityEnumerationExtension}
	}
	return config
}

// UnownedInstance borrows a handle owned elsewhere. It never destroys it,
// and must not be used after the owner has.
type UnownedInstance struct {
	api    vk.API
	handle vk.Instance
}

// BorrowInstance wraps an externally owned handle without taking ownership.
func BorrowInstance(api vk.API, handle vk.Instance) UnownedInstance {
	return UnownedInstance{api: api, handle: handle}
}

func (i UnownedInstance) Handle() vk.Instance { return i.handle }

func (i UnownedInstance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	return enumeratePhysicalDevices(i.api, i.handle)
}

// OwnedInstance owns a VkInstance and destroys it exactly once, on Destroy.
type OwnedInstance struct {
	api       vk.API
	handle    vk.Instance
	destroyed atomic.Bool
}

// NewInstance creates an instance without application info.
func NewInstance(api vk.API, flags InstanceCreateFlags, layers, extensions []string) (*OwnedInstance, error) {
	return NewInstanceWithConfig(api, InstanceConfig{
		Flags:      flags,
		Layers:     layers,
		Extensions: extensions,
	})
}

// NewInstanceWithConfig calls vkCreateInstance. On failure no wrapper is
// returned and nothing needs to be destroyed.
func NewInstanceWithConfig(api vk.API, config InstanceConfig) (*OwnedInstance, error) {
	var handle vk.Instance
	err := withCStringArray(api, config.Layers, func(layers unsafe.Pointer, layerCount uint32) error {
		return withCStringArray(api, config.Extensions, func(extensions unsafe.Pointer, extensionCount uint32) error {
			return withApplicationInfo(api, config.App, func(app *vk.ApplicationInfo) error {
				info := NewInstanceCreateInfo(vk.InstanceCreateFlags(config.Flags), app, layerCount, layers, extensionCount, extensions)
				return check("vkCreateInstance", api.CreateInstance(&info, &handle))
			})
		})
	})
	if err != nil {
		return nil, err
	}
	if handle == vk.NullHandle {
		return nil, fmt.Errorf("vkCreateInstance: %w", ErrNullHandle)
	}

	if !claim(instanceKey(handle)) {
		// The previous owner of this value can only be a stale adoption.
		Logger().Warn("driver returned a handle still registered as owned",
			zap.Uintptr("instance", uintptr(handle)))
	}
	Logger().Debug("created instance",
		zap.Uintptr("instance", uintptr(handle)),
		zap.Strings("layers", config.Layers),
		zap.Strings("extensions", config.Extensions),
		zap.Stringer("flags", config.Flags))
	return &OwnedInstance{api: api, handle: handle}, nil
}

// AdoptInstance takes exclusive ownership of a handle created outside this
// package. The caller gives up the right to destroy it: the returned
// wrapper will. Adopting a handle another OwnedInstance holds fails with
// ErrAlreadyOwned.
func AdoptInstance(api vk.API, handle vk.Instance) (*OwnedInstance, error) {
	if handle == vk.NullHandle {
		return nil, ErrNullHandle
	}
	if !claim(instanceKey(handle)) {
		return nil, ErrAlreadyOwned
	}
	Logger().Debug("adopted instance", zap.Uintptr("instance", uintptr(handle)))
	return &OwnedInstance{api: api, handle: handle}, nil
}

// Handle returns VK_NULL_HANDLE once the instance is destroyed.
func (i *OwnedInstance) Handle() vk.Instance {
	if i.destroyed.Load() {
		return vk.NullHandle
	}
	return i.handle
}

func (i *OwnedInstance) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	if i.destroyed.Load() {
		return nil, ErrDestroyed
	}
	return enumeratePhysicalDevices(i.api, i.handle)
}

// UnownedHandle returns a borrowed view for read-only consumers. The view
// is valid until Destroy.
func (i *OwnedInstance) UnownedHandle() UnownedInstance {
	return UnownedInstance{api: i.api, handle: i.Handle()}
}

// Destroy calls vkDestroyInstance. Only the first call has any effect.
// Devices created from this instance must be destroyed first.
func (i *OwnedInstance) Destroy() {
	if i == nil || !i.destroyed.CompareAndSwap(false, true) {
		return
	}
	i.api.DestroyInstance(i.handle)
	release(instanceKey(i.handle))
	Logger().Debug("destroyed instance", zap.Uintptr("instance", uintptr(i.handle)))
}

func instanceKey(h vk.Instance) handleKey {
	return handleKey{kind: kindInstance, value: uintptr(h)}
}

// withApplicationInfo scopes a VkApplicationInfo (and its C strings) to
// body. A nil config passes nil.
func withApplicationInfo(api vk.API, config *ApplicationConfig, body func(app *vk.ApplicationInfo) error) error {
	if config == nil {
		return body(nil)
	}

	engineName := config.EngineName
	if engineName == "" {
		engineName = DefaultEngineName
	}
	engineVersion := config.EngineVersion
	if engineVersion == 0 {
		engineVersion = 1
	}
	apiVersion := config.APIVersion
	if apiVersion == 0 {
		v, err := InstanceVersion(api)
		if err != nil {
			return err
		}
		apiVersion = v
	}

	return withCString(api, config.Name, func(appName unsafe.Pointer) error {
		return withCString(api, engineName, func(engine unsafe.Pointer) error {
			app := NewApplicationInfo(appName, config.Version, engine, engineVersion, uint32(apiVersion))
			return body(&app)
		})
	})
}

func enumeratePhysicalDevices(api vk.API, instance vk.Instance) ([]PhysicalDevice, error) {
	if instance == vk.NullHandle {
		return nil, ErrNullHandle
	}
	handles, err := enumerate("vkEnumeratePhysicalDevices", func(count *uint32, out *vk.PhysicalDevice) vk.Result {
		return api.EnumeratePhysicalDevices(instance, count, out)
	})
	if err != nil || len(handles) == 0 {
		return nil, err
	}

	devices := make([]PhysicalDevice, 0, len(handles))
	for _, h := range handles {
		if h == vk.NullHandle {
			Logger().Warn("discarding null physical device", zap.Uintptr("instance", uintptr(instance)))
			continue
		}
		devices = append(devices, PhysicalDevice{api: api, handle: h})
	}
	Logger().Debug("enumerated physical devices",
		zap.Uintptr("instance", uintptr(instance)),
		zap.Int("count", len(devices)))
	return devices, nil
}
