package sixaxis

import (
	"errors"
	"sync"

	"golang.org/x/exp/slices"
)

// ErrAlreadyConnected reports a controller that is already attached over
// the other transport class.
var ErrAlreadyConnected = errors.New("controller already connected")

type registryEntry struct {
	addr     DeviceAddress
	wireless bool
}

// Registry is the set of attached controller addresses. It catches the
// same physical pad arriving over USB and Bluetooth at once. One instance
// lives for the lifetime of the server; tests construct their own.
type Registry struct {
	mu      sync.Mutex
	entries []registryEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register records addr. The returned flag is true when an entry with the
// same address and the same transport class already exists: such pads are
// clones reporting a fixed dummy address, they stay attached and only need
// a naming suffix. An address match on the other transport class is the
// same physical pad connected twice and is rejected.
func (r *Registry) Register(addr DeviceAddress, wireless bool) (duplicate bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.addr != addr {
			continue
		}
		if entry.wireless != wireless {
			return false, ErrAlreadyConnected
		}
		duplicate = true
		break
	}
	r.entries = append(r.entries, registryEntry{addr: addr, wireless: wireless})
	return duplicate, nil
}

// Unregister drops one entry for addr. Unknown addresses are a no-op so
// teardown paths can call it unconditionally.
func (r *Registry) Unregister(addr DeviceAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.addr == addr {
			r.entries = slices.Delete(r.entries, i, i+1)
			return
		}
	}
}
