package vulkan

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"vulkan-bindings/vk"
)

// Device is anything that exposes a VkDevice. OwnedDevice and UnownedDevice
// both satisfy it.
type Device interface {
	Handle() vk.Device
	Queue(family, index uint32) vk.Queue
	WaitIdle() error
}

// QueueConfig requests len(Priorities) queues from one family. Each
// priority is in [0, 1].
type QueueConfig struct {
	Family     uint32
	Priorities []float32
}

type DeviceConfig struct {
	Queues     []QueueConfig
	Extensions []string
	// Layers are ignored by current loaders; kept for 1.0 implementations.
	Layers   []string
	Features *vk.PhysicalDeviceFeatures
}

// DefaultDeviceConfig requests a single queue from family.
func DefaultDeviceConfig(family uint32) DeviceConfig {
	return DeviceConfig{
		Queues: []QueueConfig{{Family: family, Priorities: []float32{1.0}}},
	}
}

// UnownedDevice borrows a VkDevice owned elsewhere.
type UnownedDevice struct {
	api    vk.API
	handle vk.Device
}

// BorrowDevice wraps an externally owned handle without taking ownership.
func BorrowDevice(api vk.API, handle vk.Device) UnownedDevice {
	return UnownedDevice{api: api, handle: handle}
}

func (d UnownedDevice) Handle() vk.Device { return d.handle }

func (d UnownedDevice) Queue(family, index uint32) vk.Queue {
	return deviceQueue(d.api, d.handle, family, index)
}

func (d UnownedDevice) WaitIdle() error {
	return deviceWaitIdle(d.api, d.handle)
}

// OwnedDevice owns a VkDevice and destroys it exactly once, on Destroy.
type OwnedDevice struct {
	api       vk.API
	handle    vk.Device
	destroyed atomic.Bool
}

// CreateDevice calls vkCreateDevice. Queue configs without priorities get
// a single queue at priority 1.
func (d PhysicalDevice) CreateDevice(config DeviceConfig) (*OwnedDevice, error) {
	if len(config.Queues) == 0 {
		return nil, ErrNoQueues
	}

	queues := make([]vk.DeviceQueueCreateInfo, len(config.Queues))
	for i, q := range config.Queues {
		priorities := q.Priorities
		if len(priorities) == 0 {
			priorities = []float32{1.0}
		}
		queues[i] = NewDeviceQueueCreateInfo(q.Family, priorities)
	}

	var handle vk.Device
	err := withCStringArray(d.api, config.Layers, func(layers unsafe.Pointer, layerCount uint32) error {
		return withCStringArray(d.api, config.Extensions, func(extensions unsafe.Pointer, extensionCount uint32) error {
			info := NewDeviceCreateInfo(queues, layerCount, layers, extensionCount, extensions, config.Features)
			return check("vkCreateDevice", d.api.CreateDevice(d.handle, &info, &handle))
		})
	})
	if err != nil {
		return nil, err
	}
	if handle == vk.NullHandle {
		return nil, fmt.Errorf("vkCreateDevice: %w", ErrNullHandle)
	}

	if !claim(deviceKey(handle)) {
		Logger().Warn("driver returned a handle still registered as owned",
			zap.Uintptr("device", uintptr(handle)))
	}
	Logger().Debug("created device",
		zap.Uintptr("physical_device", uintptr(d.handle)),
		zap.Uintptr("device", uintptr(handle)),
		zap.Int("queue_families", len(queues)),
		zap.Strings("extensions", config.Extensions))
	return &OwnedDevice{api: d.api, handle: handle}, nil
}

// AdoptDevice takes exclusive ownership of a device created elsewhere; see
// AdoptInstance.
func AdoptDevice(api vk.API, handle vk.Device) (*OwnedDevice, error) {
	if handle == vk.NullHandle {
		return nil, ErrNullHandle
	}
	if !claim(deviceKey(handle)) {
		return nil, ErrAlreadyOwned
	}
	Logger().Debug("adopted device", zap.Uintptr("device", uintptr(handle)))
	return &OwnedDevice{api: api, handle: handle}, nil
}

// Handle returns VK_NULL_HANDLE once the device is destroyed.
func (d *OwnedDevice) Handle() vk.Device {
	if d.destroyed.Load() {
		return vk.NullHandle
	}
	return d.handle
}

func (d *OwnedDevice) Queue(family, index uint32) vk.Queue {
	return deviceQueue(d.api, d.Handle(), family, index)
}

func (d *OwnedDevice) WaitIdle() error {
	if d.destroyed.Load() {
		return ErrDestroyed
	}
	return deviceWaitIdle(d.api, d.handle)
}

func (d *OwnedDevice) UnownedHandle() UnownedDevice {
	return UnownedDevice{api: d.api, handle: d.Handle()}
}

// Destroy calls vkDestroyDevice. Only the first call has any effect.
func (d *OwnedDevice) Destroy() {
	if d == nil || !d.destroyed.CompareAndSwap(false, true) {
		return
	}
	d.api.DestroyDevice(d.handle)
	release(deviceKey(d.handle))
	Logger().Debug("destroyed device", zap.Uintptr("device", uintptr(d.handle)))
}

func deviceKey(h vk.Device) handleKey {
	return handleKey{kind: kindDevice, value: uintptr(h)}
}

// deviceQueue returns VK_NULL_HANDLE for a null device.
func deviceQueue(api vk.API, device vk.Device, family, index uint32) vk.Queue {
	if device == vk.NullHandle {
		return vk.NullHandle
	}
	var queue vk.Queue
	api.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func deviceWaitIdle(api vk.API, device vk.Device) error {
	if device == vk.NullHandle {
		return ErrNullHandle
	}
	return check("vkDeviceWaitIdle", api.DeviceWaitIdle(device))
}
