package report

import "testing"

func TestOutputReportDefaults(t *testing.T) {
	o := NewOutputReport()
	if o[0] != byte(SixaxisActuators) {
		t.Errorf("report id = 0x%02X, want 0x%02X", o[0], SixaxisActuators)
	}
	if o[rumbleRightOn] != 0 || o[rumbleLeftForce] != 0 {
		t.Error("default report has rumble enabled")
	}
}

func TestSetRumble(t *testing.T) {
	o := NewOutputReport()
	o.SetRumble(0x80, true)
	if o[rumbleRightOn] != 1 {
		t.Error("right motor not enabled")
	}
	if o[rumbleLeftForce] != 0x80 {
		t.Errorf("left force = 0x%02X, want 0x80", o[rumbleLeftForce])
	}

	o.SetRumble(0, false)
	if o[rumbleRightOn] != 0 || o[rumbleLeftForce] != 0 {
		t.Error("rumble not cleared")
	}
}

func TestSetLedsBitmap(t *testing.T) {
	var o OutputReport

	// All channels off raises only the explicit all-off flag.
	o = NewOutputReport()
	o.SetLeds([4]bool{}, [4]uint8{}, [4]uint8{})
	if o[ledBitmapOffset] != ledAllOffFlag {
		t.Errorf("bitmap = 0x%02X, want 0x%02X", o[ledBitmapOffset], ledAllOffFlag)
	}

	// Channels 0 and 3 map to bits 1 and 4, no all-off flag.
	o = NewOutputReport()
	o.SetLeds([4]bool{true, false, false, true}, [4]uint8{}, [4]uint8{})
	if o[ledBitmapOffset] != 0x02|0x10 {
		t.Errorf("bitmap = 0x%02X, want 0x12", o[ledBitmapOffset])
	}
}

func TestSetLedsBlinkTiming(t *testing.T) {
	o := NewOutputReport()
	o.SetLeds([4]bool{true, true, false, false},
		[4]uint8{50, 0, 0, 0}, [4]uint8{25, 0, 0, 0})

	// Channel 0 writes to the last timing block.
	block := ledBlockOffset + 3*ledBlockSize
	if o[block+ledDutyOn] != 50 || o[block+ledDutyOff] != 25 {
		t.Errorf("channel 0 duty = %d/%d, want 50/25",
			o[block+ledDutyOn], o[block+ledDutyOff])
	}

	// Channel 1 has no blink spec, its block keeps the template values.
	block = ledBlockOffset + 2*ledBlockSize
	if o[block+ledDutyOn] != outputTemplate[block+ledDutyOn] ||
		o[block+ledDutyOff] != outputTemplate[block+ledDutyOff] {
		t.Error("channel without blink spec lost its template duty values")
	}
}
