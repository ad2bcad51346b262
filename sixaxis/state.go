package sixaxis

import "dio.wtf/sixaxis/sixaxis/report"

const maxLeds = 4

// blinkDefault is the 1 Hz fallback, in deciseconds, applied when a blink
// is requested with both delays zero. Treating that as "no blink" would
// silently turn the request into a solid LED.
const blinkDefault = 50

// ledPatterns enumerates the combinations used to visually distinguish up
// to ten simultaneously paired controllers, indexed by device id mod 10.
var ledPatterns = [10][maxLeds]bool{
	{true, false, false, false},
	{false, true, false, false},
	{false, false, true, false},
	{false, false, false, true},
	{true, false, false, true},
	{false, true, false, true},
	{false, false, true, true},
	{true, false, true, true},
	{false, true, true, true},
	{true, true, true, true},
}

// actuatorState is the authoritative LED and rumble state for one pad.
// Hardware is a write-only sink; queries answer from here. Guarded by the
// owning Device's lock.
type actuatorState struct {
	ledOn       [maxLeds]bool
	ledDelayOn  [maxLeds]uint8
	ledDelayOff [maxLeds]uint8
	rumbleLeft  uint8
	rumbleRight bool
}

// applyPattern lights the default illumination pattern for a device id.
func (s *actuatorState) applyPattern(id int) {
	s.ledOn = ledPatterns[id%len(ledPatterns)]
}

// encode renders the state into a fresh output report.
func (s *actuatorState) encode() report.OutputReport {
	o := report.NewOutputReport()
	o.SetRumble(s.rumbleLeft, s.rumbleRight)
	o.SetLeds(s.ledOn, s.ledDelayOn, s.ledDelayOff)
	return o
}

func clampDelay(d int) uint8 {
	if d < 0 {
		return 0
	}
	if d > 255 {
		return 255
	}
	return uint8(d)
}
