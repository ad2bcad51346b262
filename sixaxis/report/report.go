package report

import "errors"

// Sixaxis wire constants. Every offset below was reverse-engineered from
// the physical protocol and is calibrated against by downstream consumers,
// so none of them may move.

type FeatureReportId uint8

const (
	// FeatureAddress is a 17-byte feature report that carries the
	// controller hardware address at bytes 4..10. Reading it is also the
	// first step of the USB operational-mode handshake.
	FeatureAddress FeatureReportId = 0xF2
	// FeatureOperational is the 8-byte second step of the USB handshake.
	FeatureOperational FeatureReportId = 0xF5

	FeatureAddressSize     = 17
	FeatureOperationalSize = 8
)

func (f FeatureReportId) String() string {
	switch f {
	case FeatureAddress:
		return "FeatureAddress"
	case FeatureOperational:
		return "FeatureOperational"
	default:
		return "UNKNOWN"
	}
}

// OperationalModeWireless is the SET_REPORT payload that switches a
// wireless controller into operational mode so it starts streaming
// periodic input reports.
var OperationalModeWireless = []byte{0xF4, 0x42, 0x03, 0x00, 0x00}

var (
	ErrMalformedReport = errors.New("receive malformed input report")
	ErrShortFeature    = errors.New("receive short feature report")
)
