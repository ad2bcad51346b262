package sixaxis

import (
	"io"
	"sync"
	"testing"
	"time"
)

// blockingTransport reads like a live pad: Read blocks until the
// transport is closed.
type blockingTransport struct {
	fakeTransport
	unblock chan struct{}
	once    sync.Once
}

func (t *blockingTransport) Read(buf []byte) (int, error) {
	<-t.unblock
	return 0, io.EOF
}

func (t *blockingTransport) Close() error {
	t.once.Do(func() { close(t.unblock) })
	return nil
}

func TestStopUnblocksAttachedPumps(t *testing.T) {
	s := NewServer(Config{}) // every front-end disabled
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	ft := &blockingTransport{
		fakeTransport: fakeTransport{
			name:     "bt pad",
			uniq:     "00:11:22:33:44:55",
			wireless: true,
		},
		unblock: make(chan struct{}),
	}
	s.attach(ft, "")

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return with an attached device")
	}

	s.mu.Lock()
	remaining := len(s.devices)
	s.mu.Unlock()
	if remaining != 0 {
		t.Errorf("%d devices still tracked after Stop", remaining)
	}
}

func TestPumpTeardownReleasesDevice(t *testing.T) {
	s := NewServer(Config{})

	// An EOF transport makes the pump exit on its own; the device and
	// its id must be released without Stop.
	s.attach(newWirelessFake("00:11:22:33:44:55"), "")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		n := len(s.devices)
		s.mu.Unlock()
		if n == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if id, _ := s.ids.allocate(); id != 0 {
		t.Errorf("device id not released, next = %d", id)
	}
}
