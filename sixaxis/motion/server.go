// Package motion exports decoded controller motion and battery state over
// the DSU (Cemuhook) UDP protocol.
//
// Packet header (little endian):
//
//	4 byte magic ("DSUC" or "DSUS")
//	2 byte protocol version
//	2 byte message length
//	4 byte ieee crc32 checksum
//	4 byte client/server id
//	4 byte message type
package motion

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"net"
	"sync"
	"time"

	"dio.wtf/sixaxis/sixaxis/log"
)

const (
	protocolVer = 1001
	maxPads     = 4
	headerLen   = 20

	msgTypeVersion   = 0x100000
	msgTypeListPorts = 0x100001
	msgTypePadData   = 0x100002

	dsuClient = "DSUC"
	dsuServer = "DSUS"

	// accelScale converts raw sixaxis accelerometer counts to g.
	accelScale = 113.0

	clientExpiry = time.Minute
	sendPeriod   = 5 * time.Millisecond
)

// DSU battery codes.
const (
	batteryDying    = 0x01
	batteryLow      = 0x02
	batteryMedium   = 0x03
	batteryHigh     = 0x04
	batteryFull     = 0x05
	batteryCharging = 0xEE
	batteryCharged  = 0xEF
)

// DSU connection types.
const (
	connUSB       = 0x01
	connBluetooth = 0x02
)

var ble = binary.LittleEndian

// Status is one controller slot snapshot.
type Status struct {
	Slot     int
	MAC      [6]byte
	Wireless bool
	Capacity uint8
	Charging bool
	Full     bool

	AccelX, AccelY, AccelZ int
}

func (s Status) batteryCode() byte {
	switch {
	case s.Full:
		return batteryCharged
	case s.Charging:
		return batteryCharging
	case s.Capacity >= 100:
		return batteryFull
	case s.Capacity >= 75:
		return batteryHigh
	case s.Capacity >= 50:
		return batteryMedium
	case s.Capacity >= 25:
		return batteryLow
	default:
		return batteryDying
	}
}

// Provider supplies the current pad snapshots. Called from the send loop.
type Provider func() []Status

type client struct {
	remote   *net.UDPAddr
	clientID uint32
	lastSeen time.Time
}

// Server answers DSU discovery requests and streams pad data to
// subscribed clients.
type Server struct {
	conn     *net.UDPConn
	provider Provider
	serverID uint32

	mu      sync.Mutex
	clients map[string]*client

	done chan struct{}
	wg   sync.WaitGroup
}

func NewServer(listen string, provider Provider) (*Server, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	id := make([]byte, 4)
	rand.Read(id)

	return &Server{
		conn:     conn,
		provider: provider,
		serverID: ble.Uint32(id),
		clients:  make(map[string]*client),
		done:     make(chan struct{}),
	}, nil
}

func (s *Server) Start() {
	s.wg.Add(2)
	go s.recv()
	go s.send()
	log.InfoF("motion server listening on %s", s.conn.LocalAddr())
}

func (s *Server) Stop() {
	close(s.done)
	s.conn.Close()
	s.wg.Wait()
}

func (s *Server) recv() {
	defer s.wg.Done()
	buf := make([]byte, 128)
	for {
		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.ErrorF("motion: udp read: %v", err)
				continue
			}
		}
		if err := s.process(remote, buf[:n]); err != nil {
			log.DebugF("motion: %s: %v", remote, err)
		}
	}
}

func (s *Server) process(remote *net.UDPAddr, buf []byte) error {
	payload, clientID, msgType, err := parseHeader(buf)
	if err != nil {
		return err
	}
	switch msgType {
	case msgTypeVersion:
		res := make([]byte, 4)
		ble.PutUint16(res, protocolVer)
		s.sendMsg(remote, msgTypeVersion, res)
		return nil
	case msgTypeListPorts:
		return s.listPorts(remote, payload)
	case msgTypePadData:
		return s.subscribe(remote, clientID, payload)
	default:
		return fmt.Errorf("unknown message type 0x%X", msgType)
	}
}

func parseHeader(buf []byte) (payload []byte, clientID, msgType uint32, err error) {
	if len(buf) < headerLen {
		return nil, 0, 0, fmt.Errorf("message too short")
	}
	if string(buf[:4]) != dsuClient {
		return nil, 0, 0, fmt.Errorf("invalid magic")
	}
	if ble.Uint16(buf[4:]) != protocolVer {
		return nil, 0, 0, fmt.Errorf("invalid protocol version %d", ble.Uint16(buf[4:]))
	}
	if int(ble.Uint16(buf[6:]))+16 != len(buf) {
		return nil, 0, 0, fmt.Errorf("invalid length")
	}
	checksum := ble.Uint32(buf[8:])
	ble.PutUint32(buf[8:], 0)
	if computed := crc32.ChecksumIEEE(buf); computed != checksum {
		return nil, 0, 0, fmt.Errorf("invalid checksum")
	}
	return buf[headerLen:], ble.Uint32(buf[12:]), ble.Uint32(buf[16:]), nil
}

// listPorts answers with one 12-byte slot description per requested slot.
func (s *Server) listPorts(remote *net.UDPAddr, req []byte) error {
	if len(req) < 4 {
		return fmt.Errorf("request too short")
	}
	count := int(ble.Uint32(req))
	if count < 0 || count > maxPads || len(req) != 4+count {
		return fmt.Errorf("invalid port count")
	}

	pads := livePads(s.provider())
	bySlot := make(map[int]Status, len(pads))
	for _, p := range pads {
		bySlot[p.Slot] = p
	}

	for i := 0; i < count; i++ {
		slot := int(req[4+i])
		if slot >= maxPads {
			return fmt.Errorf("invalid slot %d", slot)
		}
		res := make([]byte, 12)
		res[0] = byte(slot)
		if p, ok := bySlot[slot]; ok {
			fillSlotHeader(res, p)
		}
		s.sendMsg(remote, msgTypeListPorts, res)
	}
	return nil
}

// livePads drops pads outside the four DSU slots so a fifth pad never
// shadows slot 0. Device ids are handed out first-fit, so this only
// triggers with more than four pads attached at once.
func livePads(pads []Status) []Status {
	out := make([]Status, 0, len(pads))
	for _, p := range pads {
		if p.Slot >= 0 && p.Slot < maxPads {
			out = append(out, p)
		}
	}
	return out
}

func fillSlotHeader(buf []byte, p Status) {
	buf[0] = byte(p.Slot)
	buf[1] = 0x02 // connected
	buf[2] = 0x02 // full gyro model
	if p.Wireless {
		buf[3] = connBluetooth
	} else {
		buf[3] = connUSB
	}
	copy(buf[4:10], p.MAC[:])
	buf[10] = p.batteryCode()
	buf[11] = 1 // active
}

// subscribe records the remote as a pad-data listener.
func (s *Server) subscribe(remote *net.UDPAddr, clientID uint32, req []byte) error {
	if len(req) != 8 {
		return fmt.Errorf("invalid request length")
	}
	s.mu.Lock()
	s.clients[remote.String()] = &client{
		remote:   remote,
		clientID: clientID,
		lastSeen: time.Now(),
	}
	s.mu.Unlock()
	return nil
}

// send streams pad data to every live subscriber.
func (s *Server) send() {
	defer s.wg.Done()
	ticker := time.NewTicker(sendPeriod)
	defer ticker.Stop()

	var counter uint32
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		now := time.Now()
		targets := make([]*net.UDPAddr, 0, len(s.clients))
		for key, c := range s.clients {
			if now.Sub(c.lastSeen) > clientExpiry {
				delete(s.clients, key)
				continue
			}
			targets = append(targets, c.remote)
		}
		s.mu.Unlock()
		if len(targets) == 0 {
			continue
		}

		for _, p := range livePads(s.provider()) {
			msg := buildPadData(p, counter)
			counter++
			for _, remote := range targets {
				s.sendMsg(remote, msgTypePadData, msg)
			}
		}
	}
}

// buildPadData renders the 80-byte pad data message.
func buildPadData(p Status, counter uint32) []byte {
	buf := make([]byte, 80)
	fillSlotHeader(buf, p)
	ble.PutUint32(buf[12:], counter)

	// Button, stick and trackpad blocks stay zero: this engine only
	// decodes motion and battery.

	ble.PutUint64(buf[48:], uint64(time.Now().UnixMicro()))
	putFloat32(buf[56:], float32(p.AccelX)/accelScale)
	putFloat32(buf[60:], float32(p.AccelY)/accelScale)
	putFloat32(buf[64:], float32(p.AccelZ)/accelScale)
	// No gyroscope on a Sixaxis.
	return buf
}

func putFloat32(buf []byte, f float32) {
	ble.PutUint32(buf, math.Float32bits(f))
}

// sendMsg frames msg with the DSU header and checksum.
func (s *Server) sendMsg(remote *net.UDPAddr, msgType uint32, msg []byte) {
	buf := make([]byte, headerLen+len(msg))
	copy(buf, dsuServer)
	ble.PutUint16(buf[4:], protocolVer)
	ble.PutUint16(buf[6:], uint16(len(msg)+4))
	ble.PutUint32(buf[12:], s.serverID)
	ble.PutUint32(buf[16:], msgType)
	copy(buf[headerLen:], msg)
	ble.PutUint32(buf[8:], crc32.ChecksumIEEE(buf))

	if _, err := s.conn.WriteToUDP(buf, remote); err != nil {
		log.ErrorF("motion: udp write to %s: %v", remote, err)
	}
}
