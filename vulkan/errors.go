package vulkan

import (
	"errors"
	"fmt"

	"vulkan-bindings/vk"
)

var (
	// ErrNullHandle is returned when a handle that must be valid is
	// VK_NULL_HANDLE, including a create call that succeeded without
	// producing one.
	ErrNullHandle = errors.New("vulkan: null handle")

	// ErrAlreadyOwned is returned when adopting a handle that already has
	// an owning wrapper.
	ErrAlreadyOwned = errors.New("vulkan: handle already owned")

	// ErrDestroyed is returned by methods called on an owning wrapper
	// after Destroy.
	ErrDestroyed = errors.New("vulkan: handle destroyed")

	// ErrNoQueues is returned by CreateDevice when no queue is requested.
	ErrNoQueues = errors.New("vulkan: device needs at least one queue")
)

// ResultError is the error for any native call that did not return
// VK_SUCCESS. Op names the Vulkan entry point.
type ResultError struct {
	Op     string
	Result vk.Result
}

func (e *ResultError) Error() string {
	if e.Op == "" {
		return "vulkan: " + e.Result.String()
	}
	return fmt.Sprintf("vulkan: %s: %s", e.Op, e.Result)
}

// Is matches another *ResultError with the same code, whatever its Op.
func (e *ResultError) Is(target error) bool {
	t, ok := target.(*ResultError)
	return ok && t.Result == e.Result
}

// Unwrap exposes the raw code, so errors.Is(err, vk.ErrorDeviceLost) works.
func (e *ResultError) Unwrap() error {
	return e.Result
}

// ResultOf extracts the native result code carried by err.
func ResultOf(err error) (vk.Result, bool) {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Result, true
	}
	return 0, false
}

// check is applied to every native call that returns a status. Anything
// other than VK_SUCCESS fails, including positive codes like VK_INCOMPLETE.
func check(op string, result vk.Result) error {
	if result == vk.Success {
		return nil
	}
	return &ResultError{Op: op, Result: result}
}
