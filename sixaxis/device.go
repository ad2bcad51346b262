package sixaxis

import (
	"fmt"
	"sync"

	"dio.wtf/sixaxis/sixaxis/log"
	"dio.wtf/sixaxis/sixaxis/report"
)

// Device is one logical Sixaxis-class controller behind a Transport.
//
// One lock guards both the decoded input state and the actuator state.
// Nothing blocking happens under it: the deferred-write runner copies the
// state out, releases the lock, then talks to hardware.
type Device struct {
	transport Transport
	registry  *Registry
	ids       *idAllocator

	name       string
	wireless   bool
	addr       DeviceAddress
	haveAddr   bool
	registered bool
	deviceID   int

	mu        sync.Mutex
	battery   uint8
	status    report.BatteryStatus
	motion    [3]int
	actuators actuatorState
	deferInit bool
	closed    bool

	sched *syncScheduler
}

// Attach runs the operational handshake, the dedup check and the id
// assignment for a freshly connected transport. On any failure every
// partial acquisition is rolled back in reverse order and the transport is
// left untouched for the caller to close.
func Attach(t Transport, registry *Registry, ids *idAllocator) (*Device, error) {
	d := &Device{
		transport: t,
		registry:  registry,
		ids:       ids,
		name:      t.Name(),
		wireless:  t.Wireless(),
		deviceID:  -1,
		battery:   100,
		status:    report.Discharging,
	}

	id, err := ids.allocate()
	if err != nil {
		return nil, err
	}
	d.deviceID = id

	if err := d.setOperational(); err != nil {
		d.rollback()
		return nil, err
	}

	// Best effort: a pad that cannot expose its address skips the dedup
	// check rather than failing attachment.
	if addr, err := d.readAddress(); err != nil {
		log.DebugF("%s: no hardware address, skipping dedup: %v", d.name, err)
	} else {
		duplicate, err := registry.Register(addr, d.wireless)
		if err != nil {
			log.InfoF("controller %s already connected", addr)
			d.rollback()
			return nil, err
		}
		d.addr = addr
		d.haveAddr = true
		d.registered = true
		if duplicate {
			d.name = fmt.Sprintf("%s #%d", d.name, id+1)
		}
	}

	d.actuators.applyPattern(id)

	// Wireless pads drop output reports sent before their first input
	// report; the initial write is deferred until one arrives.
	d.deferInit = d.wireless
	d.sched = newSyncScheduler(d.writeState)
	if !d.wireless {
		d.sched.request()
	}

	log.InfoF("attached %s, device id %d", d.name, id)
	return d, nil
}

func (d *Device) rollback() {
	if d.registered {
		d.registry.Unregister(d.addr)
		d.registered = false
	}
	if d.deviceID >= 0 {
		d.ids.release(d.deviceID)
		d.deviceID = -1
	}
}

// setOperational runs the one-time handshake after which the controller
// starts streaming input reports.
func (d *Device) setOperational() error {
	if d.wireless {
		if err := d.transport.SetFeature(report.OperationalModeWireless); err != nil {
			return fmt.Errorf("operational handshake: %w", err)
		}
		return nil
	}
	buf := make([]byte, report.FeatureAddressSize)
	if err := d.transport.GetFeature(report.FeatureAddress, buf); err != nil {
		return fmt.Errorf("operational handshake: %w", err)
	}
	buf = make([]byte, report.FeatureOperationalSize)
	if err := d.transport.GetFeature(report.FeatureOperational, buf); err != nil {
		return fmt.Errorf("operational handshake: %w", err)
	}
	return nil
}

func (d *Device) readAddress() (DeviceAddress, error) {
	if uniq := d.transport.Uniq(); uniq != "" {
		return ParseAddress(uniq)
	}
	if d.wireless {
		return DeviceAddress{}, errInvalidAddress
	}
	buf := make([]byte, report.FeatureAddressSize)
	if err := d.transport.GetFeature(report.FeatureAddress, buf); err != nil {
		return DeviceAddress{}, err
	}
	return ParseFeatureAddress(buf)
}

// HandleReport processes one raw input report. Reports are decoded in
// arrival order; the caller is the single read pump for this transport.
// Malformed reports are dropped without touching any state. Ghost reports
// are a silent no-op, not an error.
func (d *Device) HandleReport(buf []byte) error {
	r := report.InputReport(buf)
	if err := r.Validate(); err != nil {
		log.ErrorF("%s: dropping report: %v", d.name, err)
		return err
	}
	if r.Ghost() {
		return nil
	}
	r.SwapMotionWords()
	capacity, status := r.Battery()
	x, y, z := r.Motion()

	d.mu.Lock()
	d.battery = capacity
	d.status = status
	d.motion = [3]int{x, y, z}
	wake := d.deferInit
	d.deferInit = false
	d.mu.Unlock()

	if wake {
		d.sched.request()
	}
	return nil
}

// scheduleSync asks for one deferred hardware write. Requests made while
// initialization is still deferred are absorbed; the first valid input
// report flushes the accumulated state.
func (d *Device) scheduleSync() {
	d.mu.Lock()
	deferred := d.deferInit
	d.mu.Unlock()
	if !deferred {
		d.sched.request()
	}
}

// writeState is the deferred-write runner. It encodes from the latest
// state at the moment it executes. Write failures are logged and never
// propagated: the pad may still deliver input even if an actuator write
// failed.
func (d *Device) writeState() {
	d.mu.Lock()
	buf := d.actuators.encode()
	d.mu.Unlock()
	if err := d.transport.Write(buf[:]); err != nil {
		log.ErrorF("%s: output report write failed: %v", d.name, err)
	}
}

// SetLed sets a channel to a static level and cancels any blink on it.
// USB pads autonomously resume a default blink pattern until any write is
// received, so for them the write goes out even when nothing changed.
func (d *Device) SetLed(channel int, on bool) {
	if channel < 0 || channel >= maxLeds {
		return
	}
	d.mu.Lock()
	changed := d.actuators.ledOn[channel] != on ||
		d.actuators.ledDelayOn[channel] != 0 ||
		d.actuators.ledDelayOff[channel] != 0
	d.actuators.ledOn[channel] = on
	d.actuators.ledDelayOn[channel] = 0
	d.actuators.ledDelayOff[channel] = 0
	d.mu.Unlock()

	if changed || !d.wireless {
		d.scheduleSync()
	}
}

// Led returns the last level written to a channel. The store is the
// source of truth; hardware is never read back.
func (d *Device) Led(channel int) bool {
	if channel < 0 || channel >= maxLeds {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.actuators.ledOn[channel]
}

// SetLedBlink sets a channel's blink timing in deciseconds, clamped to
// [0,255] per delay. Requesting a blink with both delays zero falls back
// to 1 Hz instead of turning the channel solid.
func (d *Device) SetLedBlink(channel int, delayOn, delayOff int) {
	if channel < 0 || channel >= maxLeds {
		return
	}
	on, off := clampDelay(delayOn), clampDelay(delayOff)
	if on == 0 && off == 0 {
		on, off = blinkDefault, blinkDefault
	}
	d.mu.Lock()
	d.actuators.ledDelayOn[channel] = on
	d.actuators.ledDelayOff[channel] = off
	d.mu.Unlock()
	d.scheduleSync()
}

// Rumble applies a force-feedback effect: raw 0-255 force on the large
// left motor, on/off for the small right motor.
func (d *Device) Rumble(left uint8, right bool) {
	d.mu.Lock()
	d.actuators.rumbleLeft = left
	d.actuators.rumbleRight = right
	d.mu.Unlock()
	d.scheduleSync()
}

// Battery returns the last decoded battery state; 100/Discharging before
// the first report.
func (d *Device) Battery() (capacity uint8, status report.BatteryStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.battery, d.status
}

// Motion returns the last decoded accelerometer sample.
func (d *Device) Motion() (x, y, z int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.motion[0], d.motion[1], d.motion[2]
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Wireless() bool {
	return d.wireless
}

// Address returns the hardware address and whether one was ever parsed.
func (d *Device) Address() (DeviceAddress, bool) {
	return d.addr, d.haveAddr
}

// ID returns the allocated device id, -1 after Close.
func (d *Device) ID() int {
	return d.deviceID
}

// Close tears the device down: any pending write is awaited first so no
// write ever races the release of the registry entry and the device id.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.sched.close()
	d.rollback()
	log.InfoF("detached %s", d.name)
}
