package sixaxis

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"dio.wtf/sixaxis/sixaxis/report"
)

// Transport is one physical connection to a controller. Exactly one
// goroutine reads input reports; Write may be called concurrently from the
// deferred-write runner.
type Transport interface {
	// Name is a human-readable device name.
	Name() string
	// Uniq is the textual hardware address when the transport knows it
	// up front, empty otherwise.
	Uniq() string
	// Wireless reports the transport class.
	Wireless() bool
	// Read blocks for the next raw input report.
	Read(buf []byte) (int, error)
	// Write pushes a raw output report.
	Write(data []byte) error
	// GetFeature reads a feature report into buf; buf[0] carries the
	// report id on entry.
	GetFeature(id report.FeatureReportId, buf []byte) error
	// SetFeature sends a feature report, id included in data.
	SetFeature(data []byte) error
	Close() error
}

var errFeatureUnsupported = errors.New("feature reports not supported on this transport")

// hidraw ioctl request numbers, buffer length encoded in the high bits.
func hidIocR(nr, size uintptr) uintptr {
	const iocRead uintptr = 2
	return iocRead<<30 | size<<16 | 'H'<<8 | nr
}

func hidIocRW(nr, size uintptr) uintptr {
	const iocWrite uintptr = 1
	return hidIocR(nr, size) | iocWrite<<30
}

const (
	hidIocNrRawInfo    = 0x03
	hidIocNrSetFeature = 0x06
	hidIocNrGetFeature = 0x07
)

// hidrawInfo mirrors struct hidraw_devinfo for HIDIOCGRAWINFO.
type hidrawInfo struct {
	Bustype uint32
	Vendor  int16
	Product int16
}

const (
	busUSB = 0x03

	vendorSony     = 0x054C
	productSixaxis = 0x0268
)

// USBTransport talks to a controller through a hidraw node.
type USBTransport struct {
	f    *os.File
	name string
}

// OpenUSB opens a hidraw node and checks that it is a USB-attached
// Sixaxis-class controller.
func OpenUSB(path string) (*USBTransport, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open hidraw %s", err)
	}

	var info hidrawInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(),
		hidIocR(hidIocNrRawInfo, unsafe.Sizeof(info)), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		f.Close()
		return nil, fmt.Errorf("HIDIOCGRAWINFO %s", errno)
	}
	if info.Bustype != busUSB || info.Vendor != vendorSony || info.Product != productSixaxis {
		f.Close()
		return nil, errNotSixaxis
	}

	return &USBTransport{f: f, name: "Sixaxis Controller (USB)"}, nil
}

var errNotSixaxis = errors.New("not a USB sixaxis controller")

func (t *USBTransport) Name() string {
	return t.name
}

// Uniq is empty for USB pads; the address is read via feature report 0xF2.
func (t *USBTransport) Uniq() string {
	return ""
}

func (t *USBTransport) Wireless() bool {
	return false
}

func (t *USBTransport) Read(buf []byte) (int, error) {
	return t.f.Read(buf)
}

func (t *USBTransport) Write(data []byte) error {
	_, err := t.f.Write(data)
	return err
}

func (t *USBTransport) GetFeature(id report.FeatureReportId, buf []byte) error {
	buf[0] = byte(id)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(),
		hidIocRW(hidIocNrGetFeature, uintptr(len(buf))),
		uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return fmt.Errorf("HIDIOCGFEATURE 0x%02X %s", byte(id), errno)
	}
	return nil
}

func (t *USBTransport) SetFeature(data []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(),
		hidIocRW(hidIocNrSetFeature, uintptr(len(data))),
		uintptr(unsafe.Pointer(&data[0])))
	if errno != 0 {
		return fmt.Errorf("HIDIOCSFEATURE 0x%02X %s", data[0], errno)
	}
	return nil
}

func (t *USBTransport) Close() error {
	return t.f.Close()
}
