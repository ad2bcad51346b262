package report

import (
	"bytes"
	"testing"
)

// fullReport builds a 49-byte operational-mode report fixture.
func fullReport() InputReport {
	buf := make([]byte, InputReportSize)
	buf[0] = byte(SixaxisFullMode)
	return buf
}

func TestValidateShortReport(t *testing.T) {
	buf := make(InputReport, InputReportSize-1)
	if err := buf.Validate(); err != ErrMalformedReport {
		t.Errorf("expected ErrMalformedReport, got %v", err)
	}
	if err := fullReport().Validate(); err != nil {
		t.Errorf("expected valid report, got %v", err)
	}
}

func TestGhostReport(t *testing.T) {
	r := fullReport()
	r[1] = 0xFF
	if !r.Ghost() {
		t.Error("report with 0xFF at byte 1 not flagged as ghost")
	}
	r[1] = 0x00
	if r.Ghost() {
		t.Error("real report flagged as ghost")
	}
}

func TestBattery(t *testing.T) {
	tests := []struct {
		raw      byte
		capacity uint8
		status   BatteryStatus
	}{
		{0xEE, 100, Charging},
		{0xEF, 100, Full},
		{0x00, 0, Discharging},
		{0x01, 1, Discharging},
		{0x03, 50, Discharging},
		{0x05, 100, Discharging},
		// Out of table range degrades to the last entry.
		{0x09, 100, Discharging},
	}
	for _, tt := range tests {
		r := fullReport()
		r[batteryOffset] = tt.raw
		capacity, status := r.Battery()
		if capacity != tt.capacity || status != tt.status {
			t.Errorf("raw 0x%02X: got %d%%/%s, want %d%%/%s",
				tt.raw, capacity, status, tt.capacity, tt.status)
		}
	}
}

func TestMotion(t *testing.T) {
	r := fullReport()
	// Accelerometer words arrive most-significant-byte first:
	// X raw 523, Z raw 511, Y raw 500.
	copy(r[motionOffset:], []byte{0x02, 0x0B, 0x01, 0xFF, 0x01, 0xF4, 0x00, 0x00})

	r.SwapMotionWords()
	x, y, z := r.Motion()
	if x != 12 {
		t.Errorf("x = %d, want 12", x)
	}
	if y != 11 {
		t.Errorf("y = %d, want 11", y)
	}
	if z != 0 {
		t.Errorf("z = %d, want 0", z)
	}
}

func TestSwapMotionWordsTouchesOnlyMotionBytes(t *testing.T) {
	r := fullReport()
	for i := range r {
		r[i] = byte(i)
	}
	snapshot := make([]byte, len(r))
	copy(snapshot, r)

	r.SwapMotionWords()
	if !bytes.Equal(r[:motionOffset], snapshot[:motionOffset]) {
		t.Error("bytes before the motion block were modified")
	}
	for n := motionOffset; n < motionOffset+8; n += 2 {
		if r[n] != snapshot[n+1] || r[n+1] != snapshot[n] {
			t.Errorf("word at %d not swapped", n)
		}
	}
}
