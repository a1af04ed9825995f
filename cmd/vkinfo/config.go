package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"vulkan-bindings/vk"
	"vulkan-bindings/vulkan"
)

// profile is the optional TOML file passed with -config.
//
//	[application]
//	name = "vkinfo"
//	version = 1
//	api_version = "1.3"
//
//	[instance]
//	layers = ["VK_LAYER_KHRONOS_validation"]
//	extensions = ["VK_EXT_debug_utils"]
//	portability = false
//	validation = true
//
//	[device]
//	extensions = ["VK_KHR_swapchain"]
//	open = true
type profile struct {
	Application applicationProfile `toml:"application"`
	Instance    instanceProfile    `toml:"instance"`
	Device      deviceProfile      `toml:"device"`
}

type applicationProfile struct {
	Name       string `toml:"name"`
	Version    uint32 `toml:"version"`
	APIVersion string `toml:"api_version"`
}

type instanceProfile struct {
	Layers      []string `toml:"layers"`
	Extensions  []string `toml:"extensions"`
	Portability bool     `toml:"portability"`
	Validation  bool     `toml:"validation"`
}

type deviceProfile struct {
	Extensions []string `toml:"extensions"`
	Open       bool     `toml:"open"`
}

func defaultProfile() profile {
	return profile{
		Application: applicationProfile{Name: "vkinfo", Version: 1},
	}
}

// loadProfile reads path over the defaults. Unknown keys are an error so
// that typos do not silently drop a layer.
func loadProfile(path string) (profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return p, fmt.Errorf("read profile %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return p, nil
}

// overrides are the command line flags that add to a profile.
type overrides struct {
	layers           []string
	extensions       []string
	deviceExtensions []string
	portability      bool
	validation       bool
	openDevices      bool
}

func (p profile) merge(o overrides) profile {
	p.Instance.Layers = appendUnique(p.Instance.Layers, o.layers...)
	p.Instance.Extensions = appendUnique(p.Instance.Extensions, o.extensions...)
	p.Device.Extensions = appendUnique(p.Device.Extensions, o.deviceExtensions...)
	p.Instance.Portability = p.Instance.Portability || o.portability
	p.Instance.Validation = p.Instance.Validation || o.validation
	p.Device.Open = p.Device.Open || o.openDevices
	return p
}

// instanceConfig turns the profile into an instance config on top of the
// platform defaults. validationAvailable is consulted only when validation
// is requested.
func (p profile) instanceConfig(validationAvailable func() bool) (vulkan.InstanceConfig, error) {
	config := vulkan.DefaultInstanceConfig()
	config.Layers = appendUnique(config.Layers, p.Instance.Layers...)
	config.Extensions = appendUnique(config.Extensions, p.Instance.Extensions...)

	if p.Instance.Portability {
		config.Flags |= vulkan.EnumeratePortability
		config.Extensions = appendUnique(config.Extensions, vk.KHRPortabilityEnumerationExtension)
	}
	if p.Instance.Validation {
		if validationAvailable() {
			config.Layers = appendUnique(config.Layers, vk.KhronosValidationLayerName)
		} else {
			logger.Warn("validation requested but the Khronos validation layer is not installed")
		}
	}

	app := &vulkan.ApplicationConfig{
		Name:    p.Application.Name,
		Version: p.Application.Version,
	}
	if p.Application.APIVersion != "" {
		v, err := vulkan.ParseAPIVersion(p.Application.APIVersion)
		if err != nil {
			return config, fmt.Errorf("application.api_version: %w", err)
		}
		app.APIVersion = v
	}
	config.App = app
	return config, nil
}

func appendUnique(dst []string, names ...string) []string {
	for _, name := range names {
		if name != "" && !slices.Contains(dst, name) {
			dst = append(dst, name)
		}
	}
	return dst
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}
