package sixaxis

import (
	"errors"
	"fmt"
	"strconv"

	"dio.wtf/sixaxis/sixaxis/report"
)

// DeviceAddress is a controller hardware address. Bytes are stored in
// reverse order relative to the textual colon-hex form, matching the order
// the controller itself uses in feature report 0xF2.
type DeviceAddress [6]byte

var errInvalidAddress = errors.New("invalid hardware address")

const addressTextLen = 17

// ParseAddress accepts exactly the canonical xx:xx:xx:xx:xx:xx form.
func ParseAddress(text string) (DeviceAddress, error) {
	var addr DeviceAddress
	if len(text) != addressTextLen {
		return addr, errInvalidAddress
	}
	for i := 0; i < 6; i++ {
		if i > 0 && text[i*3-1] != ':' {
			return DeviceAddress{}, errInvalidAddress
		}
		group, err := strconv.ParseUint(text[i*3:i*3+2], 16, 8)
		if err != nil {
			return DeviceAddress{}, errInvalidAddress
		}
		addr[5-i] = byte(group)
	}
	return addr, nil
}

// ParseFeatureAddress extracts the hardware address from feature report
// 0xF2, where it sits big-endian at bytes 4..10.
func ParseFeatureAddress(buf []byte) (DeviceAddress, error) {
	var addr DeviceAddress
	if len(buf) < report.FeatureAddressSize {
		return addr, report.ErrShortFeature
	}
	for n := 0; n < 6; n++ {
		addr[5-n] = buf[4+n]
	}
	return addr, nil
}

func (a DeviceAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		a[5], a[4], a[3], a[2], a[1], a[0])
}
