package sixaxis

import (
	"errors"
	"io"
	"path/filepath"
	"sync"
	"time"

	"dio.wtf/sixaxis/sixaxis/log"
	"dio.wtf/sixaxis/sixaxis/motion"
	"dio.wtf/sixaxis/sixaxis/report"
)

// Server owns the process-wide engine state: the dedup registry, the
// device id allocator and the transport front-ends.
type Server struct {
	config   Config
	registry *Registry
	ids      *idAllocator

	mu      sync.Mutex
	devices map[*Device]Transport
	paths   map[string]struct{}

	bt       *BluetoothListener
	motion   *motion.Server
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewServer(config Config) *Server {
	return &Server{
		config:   config,
		registry: NewRegistry(),
		ids:      &idAllocator{},
		devices:  make(map[*Device]Transport),
		paths:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Server) Start() error {
	if s.config.Bluetooth.Enabled {
		bt, err := NewBluetoothListener(s.config.Bluetooth)
		if err != nil {
			return err
		}
		s.bt = bt
		s.wg.Add(1)
		go s.acceptBluetooth()
	}

	if s.config.USB.Enabled {
		s.wg.Add(1)
		go s.scanUSB()
	}

	if s.config.Motion.Enabled {
		m, err := motion.NewServer(s.config.Motion.Listen, s.pads)
		if err != nil {
			s.Stop()
			return err
		}
		s.motion = m
		m.Start()
	}
	return nil
}

func (s *Server) Stop() {
	s.stopOnce.Do(s.stop)
}

func (s *Server) stop() {
	close(s.done)
	if s.bt != nil {
		s.bt.Close()
	}
	if s.motion != nil {
		s.motion.Stop()
	}

	// Each pump blocks in its transport Read; closing the transport is
	// what unblocks it. Only then can the pumps drain and finish their
	// own teardown.
	s.mu.Lock()
	transports := make([]Transport, 0, len(s.devices))
	for _, t := range s.devices {
		transports = append(transports, t)
	}
	s.mu.Unlock()
	for _, t := range transports {
		t.Close()
	}

	s.wg.Wait()
}

func (s *Server) acceptBluetooth() {
	defer s.wg.Done()
	for {
		t, err := s.bt.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.ErrorF("bluetooth accept: %v", err)
				continue
			}
		}
		s.attach(t, "")
	}
}

// scanUSB polls for hidraw nodes of wired pads.
func (s *Server) scanUSB() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Duration(s.config.USB.ScanInterval))
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		paths, err := filepath.Glob(s.config.USB.Glob)
		if err != nil {
			continue
		}
		for _, path := range paths {
			s.mu.Lock()
			_, open := s.paths[path]
			s.mu.Unlock()
			if open {
				continue
			}
			t, err := OpenUSB(path)
			if err != nil {
				if !errors.Is(err, errNotSixaxis) {
					log.DebugF("%s: %v", path, err)
				}
				continue
			}
			s.attach(t, path)
		}
	}
}

// attach builds a Device for the transport and starts its read pump.
func (s *Server) attach(t Transport, path string) {
	d, err := Attach(t, s.registry, s.ids)
	if err != nil {
		log.ErrorF("%s: attach failed: %v", t.Name(), err)
		t.Close()
		return
	}

	s.mu.Lock()
	s.devices[d] = t
	if path != "" {
		s.paths[path] = struct{}{}
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.pump(d, t, path)
}

// pump is the single reader for one transport. It exits on transport
// error, tearing the device down.
func (s *Server) pump(d *Device, t Transport, path string) {
	defer s.wg.Done()
	buf := make([]byte, 2*report.InputReportSize)
	for {
		n, err := t.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.DebugF("%s: read: %v", d.Name(), err)
			}
			break
		}
		d.HandleReport(buf[:n])
	}

	s.mu.Lock()
	delete(s.devices, d)
	if path != "" {
		delete(s.paths, path)
	}
	s.mu.Unlock()

	t.Close()
	d.Close()
}

// pads snapshots every attached device for the motion server.
func (s *Server) pads() []motion.Status {
	s.mu.Lock()
	devices := make([]*Device, 0, len(s.devices))
	for d := range s.devices {
		devices = append(devices, d)
	}
	s.mu.Unlock()

	out := make([]motion.Status, 0, len(devices))
	for _, d := range devices {
		capacity, status := d.Battery()
		x, y, z := d.Motion()
		addr, _ := d.Address()
		out = append(out, motion.Status{
			Slot:     d.ID(),
			MAC:      addr,
			Wireless: d.Wireless(),
			Capacity: capacity,
			Charging: status == report.Charging,
			Full:     status == report.Full,
			AccelX:   x,
			AccelY:   y,
			AccelZ:   z,
		})
	}
	return out
}
