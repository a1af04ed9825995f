package vulkan

import "vulkan-bindings/vk"

// enumerate runs the count-then-fill idiom: call once with a nil output
// to learn the count, then again with a buffer of that size. A zero count
// returns nil without a second call. The result is cut to the count the
// second call reports.
func enumerate[T any](op string, call func(count *uint32, out *T) vk.Result) ([]T, error) {
	var count uint32
	if err := check(op, call(&count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	out := make([]T, count)
	if err := check(op, call(&count, &out[0])); err != nil {
		return nil, err
	}
	return out[:min(int(count), len(out))], nil
}

// enumerateNoResult is enumerate for entry points that return void.
func enumerateNoResult[T any](call func(count *uint32, out *T)) []T {
	var count uint32
	call(&count, nil)
	if count == 0 {
		return nil
	}

	out := make([]T, count)
	call(&count, &out[0])
	return out[:min(int(count), len(out))]
}
