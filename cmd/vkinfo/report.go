package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"vulkan-bindings/vk"
	"vulkan-bindings/vulkan"
)

type report struct {
	LoaderVersion string         `json:"loader_version"`
	Layers        []layerReport  `json:"layers"`
	Extensions    []string       `json:"extensions"`
	Devices       []deviceReport `json:"devices"`
}

type layerReport struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SpecVersion string `json:"spec_version"`
}

type deviceReport struct {
	Index         int                 `json:"index"`
	Name          string              `json:"name"`
	Type          string              `json:"type"`
	APIVersion    string              `json:"api_version"`
	DriverVersion uint32              `json:"driver_version"`
	VendorID      uint32              `json:"vendor_id"`
	DeviceID      uint32              `json:"device_id"`
	QueueFamilies []queueFamilyReport `json:"queue_families"`
	MemoryHeaps   []heapReport        `json:"memory_heaps"`
	Features      []featureReport     `json:"features"`
	Extensions    []string            `json:"extensions"`
	Open          *openReport         `json:"open,omitempty"`
}

type queueFamilyReport struct {
	Index         int      `json:"index"`
	Flags         []string `json:"flags"`
	Count         uint32   `json:"count"`
	TimestampBits uint32   `json:"timestamp_bits"`
}

type heapReport struct {
	Size        uint64 `json:"size"`
	DeviceLocal bool   `json:"device_local"`
}

type featureReport struct {
	Name      string `json:"name"`
	Supported bool   `json:"supported"`
}

// openReport records the outcome of creating a logical device.
type openReport struct {
	Family uint32   `json:"family"`
	Queue  bool     `json:"queue"`
	Error  string   `json:"error,omitempty"`
	Missed []string `json:"missing_extensions,omitempty"`
}

type collectOptions struct {
	// device limits the report to one index; negative means all.
	device           int
	open             bool
	deviceExtensions []string
}

func collect(api vk.API, instance vulkan.Instance, opts collectOptions) (*report, error) {
	version, err := vulkan.InstanceVersion(api)
	if err != nil {
		return nil, fmt.Errorf("loader version: %w", err)
	}
	r := &report{LoaderVersion: version.String()}

	layers, err := vulkan.EnumerateInstanceLayerProperties(api)
	if err != nil {
		return nil, fmt.Errorf("instance layers: %w", err)
	}
	for i := range layers {
		r.Layers = append(r.Layers, layerReport{
			Name:        layers[i].Name(),
			Description: layers[i].Desc(),
			SpecVersion: vulkan.APIVersion(layers[i].SpecVersion).String(),
		})
	}

	exts, err := vulkan.EnumerateInstanceExtensionProperties(api, "")
	if err != nil {
		return nil, fmt.Errorf("instance extensions: %w", err)
	}
	r.Extensions = extensionNames(exts)

	devices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, fmt.Errorf("physical devices: %w", err)
	}
	if opts.device >= len(devices) {
		return nil, fmt.Errorf("device %d: only %d devices present", opts.device, len(devices))
	}
	for i, d := range devices {
		if opts.device >= 0 && i != opts.device {
			continue
		}
		dr, err := describeDevice(i, d)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", i, err)
		}
		if opts.open {
			dr.Open = openDevice(d, opts.deviceExtensions)
		}
		r.Devices = append(r.Devices, dr)
	}
	return r, nil
}

func describeDevice(index int, d vulkan.PhysicalDevice) (deviceReport, error) {
	props := d.Properties()
	dr := deviceReport{
		Index:         index,
		Name:          props.Name(),
		Type:          props.DeviceType.String(),
		APIVersion:    vulkan.APIVersion(props.APIVersion).String(),
		DriverVersion: props.DriverVersion,
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
	}

	for i, f := range d.QueueFamilyProperties() {
		dr.QueueFamilies = append(dr.QueueFamilies, queueFamilyReport{
			Index:         i,
			Flags:         f.QueueFlags.Names(),
			Count:         f.QueueCount,
			TimestampBits: f.TimestampValidBits,
		})
	}

	mem := d.MemoryProperties()
	for _, h := range mem.MemoryHeaps[:mem.MemoryHeapCount] {
		dr.MemoryHeaps = append(dr.MemoryHeaps, heapReport{
			Size:        uint64(h.Size),
			DeviceLocal: h.Flags&vk.MemoryHeapDeviceLocalBit != 0,
		})
	}

	features := d.Features()
	for _, f := range []struct {
		name  string
		value vk.Bool32
	}{
		{"geometryShader", features.GeometryShader},
		{"tessellationShader", features.TessellationShader},
		{"samplerAnisotropy", features.SamplerAnisotropy},
		{"multiDrawIndirect", features.MultiDrawIndirect},
		{"fillModeNonSolid", features.FillModeNonSolid},
		{"wideLines", features.WideLines},
		{"shaderFloat64", features.ShaderFloat64},
		{"sparseBinding", features.SparseBinding},
	} {
		dr.Features = append(dr.Features, featureReport{Name: f.name, Supported: f.value == vk.True})
	}

	exts, err := d.EnumerateDeviceExtensionProperties("")
	if err != nil {
		return dr, err
	}
	dr.Extensions = extensionNames(exts)
	return dr, nil
}

// openDevice creates and immediately destroys a device on the first
// graphics family, fetching its first queue.
func openDevice(d vulkan.PhysicalDevice, extensions []string) *openReport {
	family, ok := d.FindQueueFamily(vk.QueueGraphicsBit)
	if !ok {
		return &openReport{Error: "no graphics queue family"}
	}
	or := &openReport{Family: family}

	missing, err := d.MissingExtensions(extensions...)
	if err != nil {
		or.Error = err.Error()
		return or
	}
	if len(missing) > 0 {
		or.Missed = missing
		or.Error = "missing device extensions"
		return or
	}

	config := vulkan.DefaultDeviceConfig(family)
	config.Extensions = extensions
	device, err := d.CreateDevice(config)
	if err != nil {
		logger.Warn("create device failed", zap.String("device", d.Name()), zap.Error(err))
		or.Error = err.Error()
		return or
	}
	defer device.Destroy()

	or.Queue = device.Queue(family, 0) != vk.NullHandle
	if err := device.WaitIdle(); err != nil {
		or.Error = err.Error()
	}
	return or
}

func extensionNames(props []vk.ExtensionProperties) []string {
	names := make([]string, len(props))
	for i := range props {
		names[i] = props[i].Name()
	}
	return names
}

func writeJSON(w io.Writer, r *report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	ok      lipgloss.Style
	bad     lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func writeText(w io.Writer, r *report, s styles, width int) {
	var b strings.Builder
	b.WriteString(s.title.Render("Vulkan"))
	fmt.Fprintf(&b, " loader %s\n\n", r.LoaderVersion)

	fmt.Fprintf(&b, "%s (%d)\n", s.heading.Render("Instance layers"), len(r.Layers))
	for _, l := range r.Layers {
		fmt.Fprintf(&b, "  %s %s\n", s.label.Render(l.Name), s.dim.Render(l.Description))
	}
	fmt.Fprintf(&b, "\n%s (%d)\n", s.heading.Render("Instance extensions"), len(r.Extensions))
	b.WriteString(wrapNames(r.Extensions, width, "  "))

	for _, d := range r.Devices {
		b.WriteString("\n")
		b.WriteString(describeText(d, s, width))
	}
	io.WriteString(w, b.String())
}

// describeText renders one device; the interactive browser shows the same text.
func describeText(d deviceReport, s styles, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.heading.Render(fmt.Sprintf("Device %d:", d.Index)), s.label.Render(d.Name))
	fmt.Fprintf(&b, "  type        %s\n", d.Type)
	fmt.Fprintf(&b, "  api         %s\n", d.APIVersion)
	fmt.Fprintf(&b, "  vendor      %#06x  device %#06x  driver %#x\n", d.VendorID, d.DeviceID, d.DriverVersion)

	b.WriteString("  queue families\n")
	for _, q := range d.QueueFamilies {
		fmt.Fprintf(&b, "    %d: %d x %s\n", q.Index, q.Count, strings.Join(q.Flags, "|"))
	}
	b.WriteString("  memory heaps\n")
	for i, h := range d.MemoryHeaps {
		local := ""
		if h.DeviceLocal {
			local = " device-local"
		}
		fmt.Fprintf(&b, "    %d: %s%s\n", i, formatBytes(h.Size), local)
	}
	b.WriteString("  features\n")
	for _, f := range d.Features {
		mark := s.bad.Render("no")
		if f.Supported {
			mark = s.ok.Render("yes")
		}
		fmt.Fprintf(&b, "    %-20s %s\n", f.Name, mark)
	}
	fmt.Fprintf(&b, "  extensions (%d)\n", len(d.Extensions))
	b.WriteString(wrapNames(d.Extensions, width, "    "))

	if o := d.Open; o != nil {
		switch {
		case o.Error != "":
			fmt.Fprintf(&b, "  open        %s", s.bad.Render(o.Error))
			if len(o.Missed) > 0 {
				fmt.Fprintf(&b, ": %s", strings.Join(o.Missed, ", "))
			}
			b.WriteString("\n")
		default:
			fmt.Fprintf(&b, "  open        %s on family %d\n", s.ok.Render("ok"), o.Family)
		}
	}
	return b.String()
}

// wrapNames lays names out in lines no wider than width.
func wrapNames(names []string, width int, indent string) string {
	if width <= len(indent) {
		width = 80
	}
	var b strings.Builder
	line := indent
	for _, n := range names {
		if line != indent && len(line)+1+len(n) > width {
			b.WriteString(line + "\n")
			line = indent
		}
		if line != indent {
			line += " "
		}
		line += n
	}
	if line != indent {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
