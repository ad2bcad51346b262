package sixaxis

import (
	"errors"
	"sync"
)

// maxDevices bounds the id space. Ids past the LED pattern table wrap to a
// repeated pattern, so a generous fixed bound is plenty.
const maxDevices = 64

var errIdExhausted = errors.New("device id space exhausted")

// idAllocator hands out the small integers that select a controller's LED
// pattern. First-fit over released slots keeps ids dense so players keep
// familiar patterns across reconnects. Release is driven through the
// owning Device, which tracks its id with a -1 sentinel, so a slot can
// never be freed twice.
type idAllocator struct {
	mu   sync.Mutex
	used [maxDevices]bool
}

func (a *idAllocator) allocate() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.used {
		if !a.used[id] {
			a.used[id] = true
			return id, nil
		}
	}
	return -1, errIdExhausted
}

func (a *idAllocator) release(id int) {
	if id < 0 || id >= maxDevices {
		return
	}
	a.mu.Lock()
	a.used[id] = false
	a.mu.Unlock()
}
