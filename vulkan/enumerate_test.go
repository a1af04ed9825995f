package vulkan

import (
	"errors"
	"testing"
	"unsafe"

	"vulkan-bindings/vk"
)

// twoCall fakes a two-call entry point over items, counting its calls.
type twoCall struct {
	items    []int
	calls    int
	first    vk.Result
	second   vk.Result
	shrinkTo int
}

func (c *twoCall) call(count *uint32, out *int) vk.Result {
	c.calls++
	if out == nil {
		*count = uint32(len(c.items))
		return c.first
	}
	if c.second != vk.Success {
		return c.second
	}
	n := min(int(*count), len(c.items))
	if c.shrinkTo > 0 {
		n = min(n, c.shrinkTo)
	}
	dst := unsafe.Slice(out, int(*count))
	copy(dst, c.items[:n])
	*count = uint32(n)
	return vk.Success
}

func TestEnumerateZeroCount(t *testing.T) {
	c := &twoCall{}
	got, err := enumerate("vkTest", c.call)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil slice, got %v", got)
	}
	if c.calls != 1 {
		t.Errorf("expected one call, got %d", c.calls)
	}
}

func TestEnumerateLength(t *testing.T) {
	c := &twoCall{items: []int{4, 8, 15, 16, 23, 42}}
	got, err := enumerate("vkTest", c.call)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(c.items) {
		t.Fatalf("expected %d items, got %d", len(c.items), len(got))
	}
	for i := range got {
		if got[i] != c.items[i] {
			t.Errorf("item %d: expected %d, got %d", i, c.items[i], got[i])
		}
	}
	if c.calls != 2 {
		t.Errorf("expected two calls, got %d", c.calls)
	}
}

func TestEnumerateTrimsToSecondCount(t *testing.T) {
	c := &twoCall{items: []int{1, 2, 3, 4}, shrinkTo: 2}
	got, err := enumerate("vkTest", c.call)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
}

func TestEnumerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		c      *twoCall
		result vk.Result
		calls  int
	}{
		{"count", &twoCall{items: []int{1}, first: vk.ErrorOutOfHostMemory}, vk.ErrorOutOfHostMemory, 1},
		{"fill", &twoCall{items: []int{1}, second: vk.ErrorInitializationFailed}, vk.ErrorInitializationFailed, 2},
		{"incomplete", &twoCall{items: []int{1}, second: vk.Incomplete}, vk.Incomplete, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enumerate("vkTest", tt.c.call)
			if got != nil {
				t.Errorf("expected no items, got %v", got)
			}
			if r, ok := ResultOf(err); !ok || r != tt.result {
				t.Errorf("expected %s, got %v", tt.result, err)
			}
			if !errors.Is(err, tt.result) {
				t.Errorf("errors.Is(%v, %s) = false", err, tt.result)
			}
			if tt.c.calls != tt.calls {
				t.Errorf("expected %d calls, got %d", tt.calls, tt.c.calls)
			}
		})
	}
}

func TestEnumerateNoResult(t *testing.T) {
	c := &twoCall{}
	if got := enumerateNoResult(func(count *uint32, out *int) { c.call(count, out) }); got != nil || c.calls != 1 {
		t.Errorf("zero count: got %v after %d calls", got, c.calls)
	}

	c = &twoCall{items: []int{7, 9}}
	got := enumerateNoResult(func(count *uint32, out *int) { c.call(count, out) })
	if len(got) != 2 || got[0] != 7 || got[1] != 9 {
		t.Errorf("expected [7 9], got %v", got)
	}
}
