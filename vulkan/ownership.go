package vulkan

import "sync"

type handleKind uint8

const (
	kindInstance handleKind = iota
	kindDevice
)

type handleKey struct {
	kind  handleKind
	value uintptr
}

// owners holds every handle that currently has an owning wrapper. At most
// one Owned* value may exist per handle; adopting a registered handle fails.
var owners = struct {
	sync.Mutex
	set map[handleKey]struct{}
}{set: make(map[handleKey]struct{})}

// claim registers key and reports whether it was free.
func claim(key handleKey) bool {
	owners.Lock()
	defer owners.Unlock()
	if _, ok := owners.set[key]; ok {
		return false
	}
	owners.set[key] = struct{}{}
	return true
}

func release(key handleKey) {
	owners.Lock()
	delete(owners.set, key)
	owners.Unlock()
}

func isOwned(key handleKey) bool {
	owners.Lock()
	defer owners.Unlock()
	_, ok := owners.set[key]
	return ok
}
