// Command vkinfo prints what the installed Vulkan loader and drivers
// offer: loader version, instance layers and extensions, and per physical
// device its properties, queue families, memory heaps, features and
// extensions.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"vulkan-bindings/internal/window"
	"vulkan-bindings/vk"
	"vulkan-bindings/vk/native"
	"vulkan-bindings/vulkan"
)

var logger = zap.NewNop()

func main() {
	var (
		o           overrides
		configPath  = flag.String("config", "", "TOML profile with application, instance and device settings")
		present     = flag.Bool("present", false, "Enable the surface extensions GLFW needs to present")
		device      = flag.Int("device", -1, "Only report the device at this index")
		jsonOut     = flag.Bool("json", false, "Print the report as JSON")
		interactive = flag.Bool("i", false, "Browse devices in a TUI")
		verbose     = flag.Bool("v", false, "Log handle lifecycle to stderr")
	)
	flag.Var((*stringList)(&o.layers), "layer", "Enable an instance layer (repeatable)")
	flag.Var((*stringList)(&o.extensions), "ext", "Enable an instance extension (repeatable)")
	flag.Var((*stringList)(&o.deviceExtensions), "device-ext", "Require a device extension when opening devices (repeatable)")
	flag.BoolVar(&o.portability, "portability", false, "Enumerate portability drivers such as MoltenVK")
	flag.BoolVar(&o.validation, "validation", false, "Enable the Khronos validation layer if installed")
	flag.BoolVar(&o.openDevices, "open", false, "Create a logical device on each reported GPU")
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
		vulkan.SetLogger(l)
		defer l.Sync()
	}

	if err := run(*configPath, o, *present, *device, *jsonOut, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, o overrides, present bool, device int, jsonOut, interactive bool) error {
	p, err := loadProfile(configPath)
	if err != nil {
		return err
	}
	if present {
		exts, err := window.RequiredInstanceExtensions()
		if err != nil {
			return fmt.Errorf("surface extensions: %w", err)
		}
		logger.Debug("glfw surface extensions", zap.Strings("extensions", exts))
		o.extensions = append(o.extensions, exts...)
		o.deviceExtensions = append(o.deviceExtensions, vk.KHRSwapchainExtension)
	}
	p = p.merge(o)

	api, err := native.Load()
	if err != nil {
		return fmt.Errorf("load vulkan: %w", err)
	}

	config, err := p.instanceConfig(func() bool {
		ok, err := vulkan.LayerAvailable(api, vk.KhronosValidationLayerName)
		if err != nil {
			logger.Warn("query instance layers", zap.Error(err))
		}
		return ok
	})
	if err != nil {
		return err
	}
	if missing, err := vulkan.MissingInstanceExtensions(api, config.Extensions...); err == nil && len(missing) > 0 {
		logger.Warn("instance extensions not offered by the loader", zap.Strings("missing", missing))
	}

	instance, err := vulkan.NewInstanceWithConfig(api, config)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer instance.Destroy()

	r, err := collect(api, instance, collectOptions{
		device:           device,
		open:             p.Device.Open,
		deviceExtensions: p.Device.Extensions,
	})
	if err != nil {
		return err
	}

	switch {
	case jsonOut:
		return writeJSON(os.Stdout, r)
	case interactive:
		return runInteractive(r)
	}

	fd := int(os.Stdout.Fd())
	tty := term.IsTerminal(fd)
	width := 80
	if tty {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}
	writeText(os.Stdout, r, newStyles(tty), width)
	return nil
}
