package sixaxis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/muka/go-bluetooth/bluez"
	"github.com/muka/go-bluetooth/bluez/profile/adapter"
	"github.com/muka/go-bluetooth/bluez/profile/profile"
	"github.com/muka/go-bluetooth/hw/linux/cmd"
	"golang.org/x/sys/unix"

	"dio.wtf/sixaxis/sixaxis/log"
	"dio.wtf/sixaxis/sixaxis/report"
)

const (
	// L2CAP PSMs for the HID control and interrupt channels.
	psmHIDControl   = 17
	psmHIDInterrupt = 19

	hidProfilePath = "/sixaxis/host"

	// HIDP transaction headers.
	hidpDataInput     = 0xA1
	hidpDataOutput    = 0xA2
	hidpSetFeature    = 0x53
	hidpHandshakeOK   = 0x00
	hidpMaxReportSize = 64
)

// BTAdapter wraps the BlueZ adapter the wireless front-end listens on.
type BTAdapter struct {
	*adapter.Adapter1
	adapterID string
}

func NewBTAdapter() (*BTAdapter, error) {
	om, err := bluez.GetObjectManager()
	if err != nil {
		return nil, err
	}
	objects, err := om.GetManagedObjects()
	if err != nil {
		return nil, err
	}

	for path, ifaces := range objects {
		if _, ok := ifaces[adapter.Adapter1Interface]; !ok {
			continue
		}
		a, err := adapter.NewAdapter1(path)
		if err != nil {
			return nil, err
		}
		s := strings.Split(string(path), "/")
		log.DebugF("using adapter under object path: %s", path)
		return &BTAdapter{Adapter1: a, adapterID: s[len(s)-1]}, nil
	}
	return nil, fmt.Errorf("no bluetooth adapter found")
}

// Reset power-cycles the adapter through hciconfig.
func (a *BTAdapter) Reset() error {
	_, err := cmd.Exec("hciconfig", a.adapterID, "reset")
	return err
}

// BluetoothListener accepts inbound HID connections from paired pads. A
// Sixaxis initiates the L2CAP connection itself once its stored host
// address matches, control channel first, interrupt channel second.
type BluetoothListener struct {
	adapter  *BTAdapter
	ctrlSock int
	itrSock  int
}

func NewBluetoothListener(config BluetoothConfig) (l *BluetoothListener, err error) {
	a, err := NewBTAdapter()
	if err != nil {
		return nil, err
	}

	if err = a.SetPowered(true); err != nil {
		return nil, fmt.Errorf("adapter power %s", err)
	}
	if err = a.SetPairable(true); err != nil {
		log.Error(err)
	}
	if err = a.SetPairableTimeout(0); err != nil {
		log.Error(err)
	}
	if err = a.SetAlias(config.Alias); err != nil {
		log.Error(err)
	} else {
		log.DebugF("setting adapter alias to %s", config.Alias)
	}

	options := map[string]interface{}{
		"Role":                  "server",
		"RequireAuthentication": false,
		"RequireAuthorization":  false,
		"AutoConnect":           true,
	}
	mgr, err := profile.NewProfileManager1()
	if err != nil {
		return nil, err
	}
	if err = mgr.RegisterProfile(hidProfilePath, uuid.NewString(), options); err != nil {
		return nil, fmt.Errorf("register profile %s", err)
	}

	addr, err := a.GetAddress()
	if err != nil {
		return nil, err
	}
	ctrlSock, err := setupSocket(addr, psmHIDControl)
	if err != nil {
		return nil, err
	}
	itrSock, err := setupSocket(addr, psmHIDInterrupt)
	if err != nil {
		unix.Close(ctrlSock)
		return nil, err
	}

	return &BluetoothListener{adapter: a, ctrlSock: ctrlSock, itrSock: itrSock}, nil
}

// setupSocket binds and listens on an L2CAP PSM of the local adapter.
func setupSocket(addr string, psm uint16) (fd int, err error) {
	fd, err = unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
	if err != nil {
		return 0, fmt.Errorf("unix.Socket %s", err)
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return 0, fmt.Errorf("unix.SetsockoptInt %s", err)
	}

	local, err := ParseAddress(strings.ToLower(addr))
	if err != nil {
		unix.Close(fd)
		return 0, err
	}
	// DeviceAddress and the kernel bdaddr share the same byte order,
	// least significant byte first.
	sa := &unix.SockaddrL2{
		PSM:      psm,
		Addr:     local,
		AddrType: unix.BDADDR_BREDR,
	}
	if err = unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return 0, fmt.Errorf("unix.Bind %s", err)
	}
	if err = unix.Listen(fd, 1); err != nil {
		unix.Close(fd)
		return 0, fmt.Errorf("unix.Listen %s", err)
	}
	return fd, nil
}

// Accept blocks for the next pad. The control connection arrives first,
// then the interrupt connection from the same address.
func (l *BluetoothListener) Accept() (*BluetoothTransport, error) {
	ctrl, ctrlAddr, err := unix.Accept(l.ctrlSock)
	if err != nil {
		return nil, fmt.Errorf("unix.Accept %s", err)
	}
	itr, itrAddr, err := unix.Accept(l.itrSock)
	if err != nil {
		unix.Close(ctrl)
		return nil, fmt.Errorf("unix.Accept %s", err)
	}

	remote := l2AddrString(ctrlAddr)
	if other := l2AddrString(itrAddr); other != remote {
		unix.Close(ctrl)
		unix.Close(itr)
		return nil, fmt.Errorf("interrupt channel from %s, control from %s", other, remote)
	}
	log.DebugF("accepted control %d and interrupt %d from %s", ctrl, itr, remote)

	return &BluetoothTransport{
		ctrl: ctrl,
		itr:  itr,
		addr: remote,
		name: "Sixaxis Controller (Bluetooth)",
	}, nil
}

func (l *BluetoothListener) Close() {
	unix.Close(l.itrSock)
	unix.Close(l.ctrlSock)
}

func l2AddrString(sa unix.Sockaddr) string {
	l2, ok := sa.(*unix.SockaddrL2)
	if !ok {
		return ""
	}
	return DeviceAddress(l2.Addr).String()
}

// BluetoothTransport is one accepted HID connection pair.
type BluetoothTransport struct {
	ctrl int
	itr  int
	addr string
	name string
}

func (t *BluetoothTransport) Name() string {
	return t.name
}

func (t *BluetoothTransport) Uniq() string {
	return t.addr
}

func (t *BluetoothTransport) Wireless() bool {
	return true
}

// Read blocks for the next input report on the interrupt channel and
// strips the HIDP DATA header.
func (t *BluetoothTransport) Read(buf []byte) (int, error) {
	tmp := make([]byte, hidpMaxReportSize)
	for {
		n, err := unix.Read(t.itr, tmp)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("interrupt channel closed")
		}
		if tmp[0] != hidpDataInput {
			continue
		}
		return copy(buf, tmp[1:n]), nil
	}
}

func (t *BluetoothTransport) Write(data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, hidpDataOutput)
	buf = append(buf, data...)
	if _, err := unix.Write(t.itr, buf); err != nil {
		return fmt.Errorf("unix.Write %s", err)
	}
	return nil
}

// GetFeature is not available over the wireless transport; the address
// comes from the socket peer instead.
func (t *BluetoothTransport) GetFeature(id report.FeatureReportId, buf []byte) error {
	return errFeatureUnsupported
}

// SetFeature sends a SET_REPORT(feature) transaction on the control
// channel and consumes the handshake reply.
func (t *BluetoothTransport) SetFeature(data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, hidpSetFeature)
	buf = append(buf, data...)
	if _, err := unix.Write(t.ctrl, buf); err != nil {
		return fmt.Errorf("unix.Write %s", err)
	}

	reply := make([]byte, 1)
	if _, err := unix.Read(t.ctrl, reply); err != nil {
		return fmt.Errorf("unix.Read %s", err)
	}
	// A HANDSHAKE reply carries its result code in the low nibble;
	// anything but SUCCESSFUL (full byte 0x00) is a refusal.
	if reply[0] != hidpHandshakeOK {
		return fmt.Errorf("handshake result 0x%02X", reply[0])
	}
	return nil
}

func (t *BluetoothTransport) Close() error {
	unix.Close(t.itr)
	return unix.Close(t.ctrl)
}
