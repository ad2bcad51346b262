package report

type OutputReportId uint8

const (
	// SixaxisActuators carries LED and rumble state to the controller.
	SixaxisActuators OutputReportId = 0x01

	// OutputReportSize is the fixed report length: id, 5-byte rumble
	// block, 4 padding bytes, LED bitmap, 4 LED timing blocks ordered
	// channel 3 down to 0, and one unused trailing block.
	OutputReportSize = 36

	rumbleRightOn   = 3
	rumbleLeftForce = 5

	ledBitmapOffset = 10
	ledBlockOffset  = 11
	ledBlockSize    = 5
	ledDutyOff      = 3
	ledDutyOn       = 4

	// ledBitmapMask covers the four real LED bits.
	ledBitmapMask = 0x1E
	// ledAllOffFlag marks all LEDs explicitly off. Third-party clones
	// fall back to an undefined LED state without it.
	ledAllOffFlag = 0x20
)

// outputTemplate is the default report: rumble off with full durations,
// LED timing bytes that keep a lit channel solid.
var outputTemplate = [OutputReportSize]byte{
	0x01,
	0x01, 0xFF, 0x00, 0xFF, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0x27, 0x10, 0x00, 0x32,
	0xFF, 0x27, 0x10, 0x00, 0x32,
	0xFF, 0x27, 0x10, 0x00, 0x32,
	0xFF, 0x27, 0x10, 0x00, 0x32,
	0x00, 0x00, 0x00, 0x00, 0x00,
}

// OutputReport represents the actuator report sent from the host to the
// Controller.
type OutputReport [OutputReportSize]byte

func NewOutputReport() OutputReport {
	return outputTemplate
}

// SetRumble drives the motors. The right (small) motor is on/off only,
// the left (large) motor takes a raw 0-255 force.
func (o *OutputReport) SetRumble(left uint8, right bool) {
	if right {
		o[rumbleRightOn] = 1
	} else {
		o[rumbleRightOn] = 0
	}
	o[rumbleLeftForce] = left
}

// SetLeds fills the bitmap and the per-channel duty fields. Channel n maps
// to bitmap bit n+1. A channel's duty bytes are only written when it has a
// blink spec; otherwise the template values keep the LED solid. The duty
// blocks are indexed in reverse order to the lights on the controller.
func (o *OutputReport) SetLeds(on [4]bool, delayOn, delayOff [4]uint8) {
	for n := 0; n < 4; n++ {
		if on[n] {
			o[ledBitmapOffset] |= 1 << (n + 1)
		}
	}
	if o[ledBitmapOffset]&ledBitmapMask == 0 {
		o[ledBitmapOffset] |= ledAllOffFlag
	}
	for n := 0; n < 4; n++ {
		if delayOn[n] == 0 && delayOff[n] == 0 {
			continue
		}
		block := ledBlockOffset + (3-n)*ledBlockSize
		o[block+ledDutyOff] = delayOff[n]
		o[block+ledDutyOn] = delayOn[n]
	}
}
