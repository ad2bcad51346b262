package sixaxis

import "sync"

// syncScheduler coalesces repeated "state changed" signals into at most
// one pending hardware write. The single-slot wake channel is the whole
// queue: a request while one is already pending is dropped, and the runner
// encodes whatever the state is at execution time, so stale requests
// collapse to current truth.
type syncScheduler struct {
	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	stopped bool
}

func newSyncScheduler(run func()) *syncScheduler {
	s := &syncScheduler{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go s.loop(run)
	return s
}

func (s *syncScheduler) loop(run func()) {
	defer close(s.done)
	for range s.wake {
		run()
	}
}

// request marks state dirty. Never blocks, safe from any context.
func (s *syncScheduler) request() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// close stops the runner and waits for any in-flight write to finish.
// Safe to call more than once.
func (s *syncScheduler) close() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.wake)
	}
	s.mu.Unlock()
	<-s.done
}
