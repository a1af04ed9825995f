// Package vktest provides an in-memory vk.API for tests. It follows the
// native calling conventions (two-call enumeration, VK_INCOMPLETE on short
// buffers, layer and extension checks at create time), counts every call
// and tracks every allocation made through it.
package vktest

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"vulkan-bindings/vk"
)

// Entry point names used by Calls and Fail.
const (
	CreateInstance                         = "vkCreateInstance"
	DestroyInstance                        = "vkDestroyInstance"
	EnumerateInstanceVersion               = "vkEnumerateInstanceVersion"
	EnumerateInstanceExtensionProperties   = "vkEnumerateInstanceExtensionProperties"
	EnumerateInstanceLayerProperties       = "vkEnumerateInstanceLayerProperties"
	EnumeratePhysicalDevices               = "vkEnumeratePhysicalDevices"
	GetPhysicalDeviceProperties            = "vkGetPhysicalDeviceProperties"
	GetPhysicalDeviceFeatures              = "vkGetPhysicalDeviceFeatures"
	GetPhysicalDeviceMemoryProperties      = "vkGetPhysicalDeviceMemoryProperties"
	GetPhysicalDeviceQueueFamilyProperties = "vkGetPhysicalDeviceQueueFamilyProperties"
	EnumerateDeviceExtensionProperties     = "vkEnumerateDeviceExtensionProperties"
	EnumerateDeviceLayerProperties         = "vkEnumerateDeviceLayerProperties"
	CreateDevice                           = "vkCreateDevice"
	DestroyDevice                          = "vkDestroyDevice"
	GetDeviceQueue                         = "vkGetDeviceQueue"
	DeviceWaitIdle                         = "vkDeviceWaitIdle"
)

// handles are unique across every Driver in the process, like real ones.
var nextHandle atomic.Uintptr

func init() {
	nextHandle.Store(0x10000)
}

func newHandle() uintptr {
	return nextHandle.Add(0x10)
}

// Layer is an instance or device layer the fake reports.
type Layer struct {
	Name        string
	Description string
	Extensions  []string
}

// GPU is a physical device the fake reports.
type GPU struct {
	Properties    vk.PhysicalDeviceProperties
	Features      vk.PhysicalDeviceFeatures
	Memory        vk.PhysicalDeviceMemoryProperties
	QueueFamilies []vk.QueueFamilyProperties
	Extensions    []string
	Layers        []Layer

	handle vk.PhysicalDevice
}

// Handle is zero until the GPU is added to a Driver.
func (g *GPU) Handle() vk.PhysicalDevice { return g.handle }

// NewGPU returns a device with a graphics+compute+transfer family, a
// transfer-only family, one device-local heap and VK_KHR_swapchain.
func NewGPU(name string, typ vk.PhysicalDeviceType) *GPU {
	g := &GPU{
		QueueFamilies: []vk.QueueFamilyProperties{
			{QueueFlags: vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit, QueueCount: 16, TimestampValidBits: 64,
				MinImageTransferGranularity: vk.Extent3D{Width: 1, Height: 1, Depth: 1}},
			{QueueFlags: vk.QueueTransferBit, QueueCount: 2, TimestampValidBits: 64,
				MinImageTransferGranularity: vk.Extent3D{Width: 1, Height: 1, Depth: 1}},
		},
		Extensions: []string{vk.KHRSwapchainExtension},
	}
	g.Properties.APIVersion = vk.APIVersion13
	g.Properties.DriverVersion = vk.MakeAPIVersion(0, 1, 0, 0)
	g.Properties.VendorID = 0x10DE
	g.Properties.DeviceID = 0x2484
	g.Properties.DeviceType = typ
	vk.SetName(g.Properties.DeviceName[:], name)
	g.Properties.Limits.MaxImageDimension2D = 16384
	g.Features.SamplerAnisotropy = vk.True
	g.Features.TessellationShader = vk.True
	g.Memory.MemoryTypeCount = 1
	g.Memory.MemoryTypes[0] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyDeviceLocalBit, HeapIndex: 0}
	g.Memory.MemoryHeapCount = 1
	g.Memory.MemoryHeaps[0] = vk.MemoryHeap{Size: 8 << 30, Flags: vk.MemoryHeapDeviceLocalBit}
	return g
}

// InstanceInfo is what the fake read out of a VkInstanceCreateInfo.
type InstanceInfo struct {
	Flags      vk.InstanceCreateFlags
	Layers     []string
	Extensions []string
	App        *AppInfo
}

type AppInfo struct {
	Name          string
	Version       uint32
	EngineName    string
	EngineVersion uint32
	APIVersion    uint32
}

// DeviceInfo is what the fake read out of a VkDeviceCreateInfo.
type DeviceInfo struct {
	PhysicalDevice vk.PhysicalDevice
	Queues         []QueueInfo
	Layers         []string
	Extensions     []string
	Features       *vk.PhysicalDeviceFeatures
}

type QueueInfo struct {
	Family     uint32
	Priorities []float32
}

type failure struct {
	nth    int
	result vk.Result
}

type device struct {
	info   DeviceInfo
	queues map[[2]uint32]vk.Queue
}

// Driver is a fake vk.API. Configure it before use; its methods are safe
// for concurrent use.
type Driver struct {
	// Version reported by vkEnumerateInstanceVersion; zero makes the call
	// fail with VK_ERROR_FEATURE_NOT_PRESENT, like a 1.0 loader.
	Version            uint32
	InstanceLayers     []Layer
	InstanceExtensions []string
	// NullDevices appends that many VK_NULL_HANDLE entries to every
	// physical device enumeration.
	NullDevices int
	// ReturnNullInstance makes vkCreateInstance succeed without a handle.
	ReturnNullInstance bool

	mu        sync.Mutex
	gpus      []*GPU
	calls     map[string]int
	failures  map[string]failure
	live      map[uintptr][]uint64
	allocs    int
	frees     int
	badFrees  int
	destroyed int
	instances map[vk.Instance]InstanceInfo
	devices   map[vk.Device]*device
	lastInst  *InstanceInfo
	lastDev   *DeviceInfo
}

var _ vk.API = (*Driver)(nil)

// New returns a driver with a 1.3 loader, the Khronos validation layer and
// the surface and portability instance extensions, and no GPUs.
func New() *Driver {
	return &Driver{
		Version: vk.APIVersion13,
		InstanceLayers: []Layer{
			{Name: vk.KhronosValidationLayerName, Description: "Khronos Validation Layer", Extensions: []string{vk.EXTDebugUtilsExtension}},
		},
		InstanceExtensions: []string{vk.KHRSurfaceExtension, vk.KHRPortabilityEnumerationExtension},
		calls:              make(map[string]int),
		failures:           make(map[string]failure),
		live:               make(map[uintptr][]uint64),
		instances:          make(map[vk.Instance]InstanceInfo),
		devices:            make(map[vk.Device]*device),
	}
}

// AddGPU registers g and assigns its handle.
func (d *Driver) AddGPU(g *GPU) *GPU {
	d.mu.Lock()
	defer d.mu.Unlock()
	g.handle = vk.PhysicalDevice(newHandle())
	d.gpus = append(d.gpus, g)
	return g
}

// Fail makes every call to op return result.
func (d *Driver) Fail(op string, result vk.Result) {
	d.FailNth(op, 0, result)
}

// FailNth makes only the nth (1-based) call to op return result; zero
// means every call.
func (d *Driver) FailNth(op string, nth int, result vk.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = failure{nth: nth, result: result}
}

// Calls returns how many times op has been called.
func (d *Driver) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

// Allocs and Frees count Malloc and successful Free calls.
func (d *Driver) Allocs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocs
}

func (d *Driver) Frees() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frees
}

// BadFrees counts frees of pointers that are not live: double frees and
// foreign pointers.
func (d *Driver) BadFrees() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.badFrees
}

// Live returns the number of allocations not yet freed.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// LiveInstances returns the number of created, not yet destroyed instances.
func (d *Driver) LiveInstances() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.instances)
}

func (d *Driver) LiveDevices() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.devices)
}

// BadDestroys counts destroy calls on handles that are not live.
func (d *Driver) BadDestroys() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// LastInstanceInfo returns the descriptor seen by the latest vkCreateInstance.
func (d *Driver) LastInstanceInfo() *InstanceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastInst
}

func (d *Driver) LastDeviceInfo() *DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastDev
}

// enter records a call and returns the injected failure, if any. Callers
// hold d.mu.
func (d *Driver) enter(op string) vk.Result {
	d.calls[op]++
	f, ok := d.failures[op]
	if !ok || (f.nth != 0 && f.nth != d.calls[op]) {
		return vk.Success
	}
	return f.result
}

func (d *Driver) Malloc(size uintptr) unsafe.Pointer {
	d.mu.Lock()
	defer d.mu.Unlock()
	// []uint64 keeps the block 8-byte aligned for pointer arrays.
	buf := make([]uint64, max(1, (size+7)/8))
	p := unsafe.Pointer(&buf[0])
	d.live[uintptr(p)] = buf
	d.allocs++
	return p
}

func (d *Driver) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[uintptr(p)]; !ok {
		d.badFrees++
		return
	}
	delete(d.live, uintptr(p))
	d.frees++
}

// readString reads a C string that must live in memory from Malloc.
func (d *Driver) readString(p unsafe.Pointer) (string, bool) {
	if p == nil {
		return "", true
	}
	buf, ok := d.live[uintptr(p)]
	if !ok {
		return "", false
	}
	b := unsafe.Slice((*byte)(p), len(buf)*8)
	return vk.GoString(b), true
}

// readStrings walks a `const char* const*` of n entries.
func (d *Driver) readStrings(array unsafe.Pointer, n uint32) ([]string, bool) {
	if n == 0 {
		return nil, true
	}
	if _, ok := d.live[uintptr(array)]; !ok {
		return nil, false
	}
	out := make([]string, 0, n)
	for _, p := range unsafe.Slice((*unsafe.Pointer)(array), n) {
		s, ok := d.readString(p)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}

func (d *Driver) CreateInstance(info *vk.InstanceCreateInfo, instance *vk.Instance) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(CreateInstance); r != vk.Success {
		return r
	}
	if info == nil || info.SType != vk.StructureTypeInstanceCreateInfo {
		return vk.ErrorInitializationFailed
	}

	layers, ok := d.readStrings(info.PpEnabledLayerNames, info.EnabledLayerCount)
	if !ok {
		return vk.ErrorInitializationFailed
	}
	extensions, ok := d.readStrings(info.PpEnabledExtensionNames, info.EnabledExtensionCount)
	if !ok {
		return vk.ErrorInitializationFailed
	}
	seen := InstanceInfo{Flags: info.Flags, Layers: layers, Extensions: extensions}

	if ai := info.PApplicationInfo; ai != nil {
		if ai.SType != vk.StructureTypeApplicationInfo {
			return vk.ErrorInitializationFailed
		}
		name, ok1 := d.readString(ai.PApplicationName)
		engine, ok2 := d.readString(ai.PEngineName)
		if !ok1 || !ok2 {
			return vk.ErrorInitializationFailed
		}
		seen.App = &AppInfo{
			Name:          name,
			Version:       ai.ApplicationVersion,
			EngineName:    engine,
			EngineVersion: ai.EngineVersion,
			APIVersion:    ai.APIVersion,
		}
	}
	d.lastInst = &seen

	available := append([]string(nil), d.InstanceExtensions...)
	for _, name := range layers {
		layer, ok := d.findLayer(d.InstanceLayers, name)
		if !ok {
			return vk.ErrorLayerNotPresent
		}
		available = append(available, layer.Extensions...)
	}
	for _, name := range extensions {
		if !contains(available, name) {
			return vk.ErrorExtensionNotPresent
		}
	}

	if d.ReturnNullInstance {
		*instance = vk.NullHandle
		return vk.Success
	}
	h := vk.Instance(newHandle())
	d.instances[h] = seen
	*instance = h
	return vk.Success
}

func (d *Driver) findLayer(layers []Layer, name string) (Layer, bool) {
	for _, l := range layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

func (d *Driver) DestroyInstance(instance vk.Instance) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(DestroyInstance)
	if _, ok := d.instances[instance]; !ok {
		d.destroyed++
		return
	}
	delete(d.instances, instance)
}

func (d *Driver) EnumerateInstanceVersion(version *uint32) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(EnumerateInstanceVersion); r != vk.Success {
		return r
	}
	if d.Version == 0 {
		return vk.ErrorFeatureNotPresent
	}
	*version = d.Version
	return vk.Success
}

// fill implements the output half of the two-call idiom.
func fill[T any](src []T, count *uint32, out *T) vk.Result {
	if out == nil {
		*count = uint32(len(src))
		return vk.Success
	}
	n := copy(unsafe.Slice(out, *count), src)
	*count = uint32(n)
	if n < len(src) {
		return vk.Incomplete
	}
	return vk.Success
}

func extensionProps(names []string) []vk.ExtensionProperties {
	props := make([]vk.ExtensionProperties, len(names))
	for i, name := range names {
		vk.SetName(props[i].ExtensionName[:], name)
		props[i].SpecVersion = 1
	}
	return props
}

func layerProps(layers []Layer) []vk.LayerProperties {
	props := make([]vk.LayerProperties, len(layers))
	for i, l := range layers {
		vk.SetName(props[i].LayerName[:], l.Name)
		vk.SetName(props[i].Description[:], l.Description)
		props[i].SpecVersion = vk.APIVersion13
		props[i].ImplementationVersion = 1
	}
	return props
}

func (d *Driver) EnumerateInstanceExtensionProperties(layerName unsafe.Pointer, count *uint32, props *vk.ExtensionProperties) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(EnumerateInstanceExtensionProperties); r != vk.Success {
		return r
	}
	names := d.InstanceExtensions
	if layerName != nil {
		name, ok := d.readString(layerName)
		if !ok {
			return vk.ErrorInitializationFailed
		}
		layer, ok := d.findLayer(d.InstanceLayers, name)
		if !ok {
			return vk.ErrorLayerNotPresent
		}
		names = layer.Extensions
	}
	return fill(extensionProps(names), count, props)
}

func (d *Driver) EnumerateInstanceLayerProperties(count *uint32, props *vk.LayerProperties) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(EnumerateInstanceLayerProperties); r != vk.Success {
		return r
	}
	return fill(layerProps(d.InstanceLayers), count, props)
}

func (d *Driver) EnumeratePhysicalDevices(instance vk.Instance, count *uint32, devices *vk.PhysicalDevice) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(EnumeratePhysicalDevices); r != vk.Success {
		return r
	}
	if _, ok := d.instances[instance]; !ok {
		return vk.ErrorInitializationFailed
	}
	handles := make([]vk.PhysicalDevice, 0, len(d.gpus)+d.NullDevices)
	for _, g := range d.gpus {
		handles = append(handles, g.handle)
	}
	for i := 0; i < d.NullDevices; i++ {
		handles = append(handles, vk.NullHandle)
	}
	return fill(handles, count, devices)
}

func (d *Driver) gpu(h vk.PhysicalDevice) *GPU {
	for _, g := range d.gpus {
		if g.handle == h {
			return g
		}
	}
	return nil
}

func (d *Driver) GetPhysicalDeviceProperties(physicalDevice vk.PhysicalDevice, props *vk.PhysicalDeviceProperties) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(GetPhysicalDeviceProperties)
	if g := d.gpu(physicalDevice); g != nil {
		*props = g.Properties
	}
}

func (d *Driver) GetPhysicalDeviceFeatures(physicalDevice vk.PhysicalDevice, features *vk.PhysicalDeviceFeatures) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(GetPhysicalDeviceFeatures)
	if g := d.gpu(physicalDevice); g != nil {
		*features = g.Features
	}
}

func (d *Driver) GetPhysicalDeviceMemoryProperties(physicalDevice vk.PhysicalDevice, props *vk.PhysicalDeviceMemoryProperties) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(GetPhysicalDeviceMemoryProperties)
	if g := d.gpu(physicalDevice); g != nil {
		*props = g.Memory
	}
}

func (d *Driver) GetPhysicalDeviceQueueFamilyProperties(physicalDevice vk.PhysicalDevice, count *uint32, props *vk.QueueFamilyProperties) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(GetPhysicalDeviceQueueFamilyProperties)
	var families []vk.QueueFamilyProperties
	if g := d.gpu(physicalDevice); g != nil {
		families = g.QueueFamilies
	}
	fill(families, count, props)
}

func (d *Driver) EnumerateDeviceExtensionProperties(physicalDevice vk.PhysicalDevice, layerName unsafe.Pointer, count *uint32, props *vk.ExtensionProperties) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(EnumerateDeviceExtensionProperties); r != vk.Success {
		return r
	}
	g := d.gpu(physicalDevice)
	if g == nil {
		return vk.ErrorInitializationFailed
	}
	names := g.Extensions
	if layerName != nil {
		name, ok := d.readString(layerName)
		if !ok {
			return vk.ErrorInitializationFailed
		}
		layer, ok := d.findLayer(g.Layers, name)
		if !ok {
			return vk.ErrorLayerNotPresent
		}
		names = layer.Extensions
	}
	return fill(extensionProps(names), count, props)
}

func (d *Driver) EnumerateDeviceLayerProperties(physicalDevice vk.PhysicalDevice, count *uint32, props *vk.LayerProperties) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(EnumerateDeviceLayerProperties); r != vk.Success {
		return r
	}
	g := d.gpu(physicalDevice)
	if g == nil {
		return vk.ErrorInitializationFailed
	}
	return fill(layerProps(g.Layers), count, props)
}

func (d *Driver) CreateDevice(physicalDevice vk.PhysicalDevice, info *vk.DeviceCreateInfo, out *vk.Device) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(CreateDevice); r != vk.Success {
		return r
	}
	g := d.gpu(physicalDevice)
	if g == nil || info == nil || info.SType != vk.StructureTypeDeviceCreateInfo {
		return vk.ErrorInitializationFailed
	}

	layers, ok := d.readStrings(info.PpEnabledLayerNames, info.EnabledLayerCount)
	if !ok {
		return vk.ErrorInitializationFailed
	}
	extensions, ok := d.readStrings(info.PpEnabledExtensionNames, info.EnabledExtensionCount)
	if !ok {
		return vk.ErrorInitializationFailed
	}
	seen := DeviceInfo{PhysicalDevice: physicalDevice, Layers: layers, Extensions: extensions}
	if info.PEnabledFeatures != nil {
		features := *info.PEnabledFeatures
		seen.Features = &features
	}
	if info.QueueCreateInfoCount > 0 && info.PQueueCreateInfos != nil {
		for _, q := range unsafe.Slice(info.PQueueCreateInfos, info.QueueCreateInfoCount) {
			if q.SType != vk.StructureTypeDeviceQueueCreateInfo {
				return vk.ErrorInitializationFailed
			}
			qi := QueueInfo{Family: q.QueueFamilyIndex}
			if q.QueueCount > 0 && q.PQueuePriorities != nil {
				qi.Priorities = append(qi.Priorities, unsafe.Slice(q.PQueuePriorities, q.QueueCount)...)
			}
			seen.Queues = append(seen.Queues, qi)
		}
	}
	d.lastDev = &seen

	if len(seen.Queues) == 0 {
		return vk.ErrorInitializationFailed
	}
	for _, q := range seen.Queues {
		if int(q.Family) >= len(g.QueueFamilies) || uint32(len(q.Priorities)) > g.QueueFamilies[q.Family].QueueCount {
			return vk.ErrorInitializationFailed
		}
	}
	for _, name := range extensions {
		if !contains(g.Extensions, name) {
			return vk.ErrorExtensionNotPresent
		}
	}

	h := vk.Device(newHandle())
	d.devices[h] = &device{info: seen, queues: make(map[[2]uint32]vk.Queue)}
	*out = h
	return vk.Success
}

func (d *Driver) DestroyDevice(dev vk.Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(DestroyDevice)
	if _, ok := d.devices[dev]; !ok {
		d.destroyed++
		return
	}
	delete(d.devices, dev)
}

// GetDeviceQueue hands out a stable handle per (family, index) that was
// requested at create time, and VK_NULL_HANDLE otherwise.
func (d *Driver) GetDeviceQueue(dev vk.Device, queueFamilyIndex, queueIndex uint32, queue *vk.Queue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enter(GetDeviceQueue)
	*queue = vk.NullHandle
	state, ok := d.devices[dev]
	if !ok {
		return
	}
	for _, q := range state.info.Queues {
		if q.Family == queueFamilyIndex && queueIndex < uint32(len(q.Priorities)) {
			key := [2]uint32{queueFamilyIndex, queueIndex}
			h, ok := state.queues[key]
			if !ok {
				h = vk.Queue(newHandle())
				state.queues[key] = h
			}
			*queue = h
			return
		}
	}
}

func (d *Driver) DeviceWaitIdle(dev vk.Device) vk.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.enter(DeviceWaitIdle); r != vk.Success {
		return r
	}
	if _, ok := d.devices[dev]; !ok {
		return vk.ErrorDeviceLost
	}
	return vk.Success
}
