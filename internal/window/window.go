// Package window opens GLFW windows configured for Vulkan (no client API)
// and reports the instance extensions needed to present to them.
package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// ErrVulkanUnsupported is returned when GLFW found no Vulkan loader.
var ErrVulkanUnsupported = errors.New("window: vulkan not supported by glfw")

type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	Visible   bool
}

func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Title:     "vulkan-bindings",
		Resizable: true,
		Visible:   true,
	}
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
}

// Open initializes GLFW and creates a window with no client API. GLFW
// must be driven from the main goroutine.
func Open(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, ErrVulkanUnsupported
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.Visible, boolToInt(config.Visible))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &Window{Handle: handle, Width: config.Width, Height: config.Height}
	handle.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
	})
	return w, nil
}

// RequiredInstanceExtensions lists the instance extensions a surface for
// this window needs, VK_KHR_surface first.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.Handle.GetRequiredInstanceExtensions()
}

func (w *Window) Close() {
	w.Handle.Destroy()
	glfw.Terminate()
}

// RequiredInstanceExtensions opens a hidden 1x1 window just long enough to
// ask GLFW which surface extensions this platform needs.
func RequiredInstanceExtensions() ([]string, error) {
	config := DefaultConfig()
	config.Width, config.Height = 1, 1
	config.Visible = false
	config.Resizable = false

	w, err := Open(config)
	if err != nil {
		return nil, err
	}
	defer w.Close()
	return w.RequiredInstanceExtensions(), nil
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
