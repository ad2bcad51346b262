package report

import "encoding/binary"

type InputReportId uint8

const (
	// SixaxisFullMode is the combined battery and motion report the
	// controller streams once it is in operational mode.
	SixaxisFullMode InputReportId = 0x01

	// InputReportSize is the minimum length of a full-mode report.
	InputReportSize = 49

	// batteryOffset holds the raw battery level byte.
	batteryOffset = 30
	// motionOffset is the base of the four accelerometer words.
	motionOffset = 41
)

type BatteryStatus uint8

const (
	Discharging BatteryStatus = iota
	Charging
	Full
)

func (b BatteryStatus) String() string {
	switch b {
	case Discharging:
		return "Discharging"
	case Charging:
		return "Charging"
	case Full:
		return "Full"
	default:
		return "UNKNOWN"
	}
}

// batteryCapacity maps a raw level byte below the charging threshold to a
// percentage. Raw values past the table are clamped to the last entry.
var batteryCapacity = [6]uint8{0, 1, 25, 50, 75, 100}

// InputReport represents a report sent from the Controller to the host.
type InputReport []byte

func (i InputReport) Validate() error {
	if len(i) < InputReportSize {
		return ErrMalformedReport
	}
	return nil
}

func (i InputReport) Id() InputReportId {
	return InputReportId(i[0])
}

// Ghost reports a wireless link artifact that carries no device state.
// They arrive at high frequency and are dropped without logging.
func (i InputReport) Ghost() bool {
	return i[1] == 0xFF
}

// SwapMotionWords reorders the four accelerometer words in place. The
// controller transmits them most-significant-byte first; everything after
// this point expects native little-endian order.
func (i InputReport) SwapMotionWords() {
	for n := motionOffset; n < motionOffset+8; n += 2 {
		i[n], i[n+1] = i[n+1], i[n]
	}
}

// Battery decodes the raw level byte. The controller reports 0xEE while
// charging and 0xEF once full; it does not report an actual level in
// either state, so capacity is pinned to 100.
func (i InputReport) Battery() (capacity uint8, status BatteryStatus) {
	raw := i[batteryOffset]
	if raw >= 0xEE {
		if raw&0x01 != 0 {
			return 100, Full
		}
		return 100, Charging
	}
	index := raw
	if index > 5 {
		index = 5
	}
	return batteryCapacity[index], Discharging
}

// Motion extracts the three accelerometer axes, centered on zero. Y and Z
// are physically swapped and inverted relative to X on the Sixaxis board.
// Call SwapMotionWords first.
func (i InputReport) Motion() (x, y, z int) {
	x = int(binary.LittleEndian.Uint16(i[motionOffset:])) - 511
	y = 511 - int(binary.LittleEndian.Uint16(i[motionOffset+4:]))
	z = 511 - int(binary.LittleEndian.Uint16(i[motionOffset+2:]))
	return
}
