// Package socketio implements the subset of the Engine.IO v4 / Socket.IO v5
// text framing needed by a websocket-only client: open, ping/pong, close and
// namespaced event/connect/disconnect packets. Binary attachments are not
// supported.
package socketio

import (
	"errors"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedPacket is returned for frames that do not follow the framing rules.
var ErrMalformedPacket = errors.New("socketio: malformed packet")

// DefaultNamespace is the namespace used when a packet carries none.
const DefaultNamespace = "/"

// EngineType is the leading Engine.IO packet type character.
type EngineType byte

const (
	EngineOpen    EngineType = '0'
	EngineClose   EngineType = '1'
	EnginePing    EngineType = '2'
	EnginePong    EngineType = '3'
	EngineMessage EngineType = '4'
	EngineUpgrade EngineType = '5'
	EngineNoop    EngineType = '6'
)

// PacketType is the Socket.IO packet type carried inside an Engine.IO message.
type PacketType int

const (
	PacketConnect PacketType = iota
	PacketDisconnect
	PacketEvent
	PacketAck
	PacketConnectError
	PacketBinaryEvent
	PacketBinaryAck
)

func (t PacketType) String() string {
	switch t {
	case PacketConnect:
		return "connect"
	case PacketDisconnect:
		return "disconnect"
	case PacketEvent:
		return "event"
	case PacketAck:
		return "ack"
	case PacketConnectError:
		return "connect_error"
	case PacketBinaryEvent:
		return "binary_event"
	case PacketBinaryAck:
		return "binary_ack"
	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// Packet is a decoded Socket.IO packet.
type Packet struct {
	Type      PacketType
	Namespace string
	AckID     int // -1 when absent
	Data      []byte
}

// Frame is one decoded websocket text message.
type Frame struct {
	Engine EngineType
	// Packet is set for EngineMessage frames.
	Packet *Packet
	// Payload holds the raw body of non-message frames (e.g. the open handshake).
	Payload []byte
}

// OpenInfo is the handshake payload of an Engine.IO open packet.
type OpenInfo struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// DecodeFrame parses a single websocket text message.
func DecodeFrame(msg []byte) (Frame, error) {
	if len(msg) == 0 {
		return Frame{}, fmt.Errorf("%w: empty frame", ErrMalformedPacket)
	}
	engine := EngineType(msg[0])
	switch engine {
	case EngineOpen, EngineClose, EnginePing, EnginePong, EngineUpgrade, EngineNoop:
		return Frame{Engine: engine, Payload: msg[1:]}, nil
	case EngineMessage:
		pkt, err := decodePacket(msg[1:])
		if err != nil {
			return Frame{}, err
		}
		return Frame{Engine: engine, Packet: &pkt}, nil
	default:
		return Frame{}, fmt.Errorf("%w: unknown engine type %q", ErrMalformedPacket, msg[0])
	}
}

func decodePacket(body []byte) (Packet, error) {
	if len(body) == 0 || body[0] < '0' || body[0] > '6' {
		return Packet{}, fmt.Errorf("%w: missing packet type", ErrMalformedPacket)
	}
	pkt := Packet{Type: PacketType(body[0] - '0'), Namespace: DefaultNamespace, AckID: -1}
	i := 1
	if pkt.Type == PacketBinaryEvent || pkt.Type == PacketBinaryAck {
		for i < len(body) && body[i] != '-' {
			i++
		}
		if i == len(body) {
			return Packet{}, fmt.Errorf("%w: binary packet without attachment count", ErrMalformedPacket)
		}
		i++
	}
	if i < len(body) && body[i] == '/' {
		start := i
		for i < len(body) && body[i] != ',' {
			i++
		}
		pkt.Namespace = string(body[start:i])
		if i < len(body) {
			i++
		}
	}
	start := i
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	if i > start {
		id, err := strconv.Atoi(string(body[start:i]))
		if err != nil {
			return Packet{}, fmt.Errorf("%w: ack id: %v", ErrMalformedPacket, err)
		}
		pkt.AckID = id
	}
	if i < len(body) {
		pkt.Data = append([]byte(nil), body[i:]...)
	}
	return pkt, nil
}

// DecodeOpen parses the JSON body of an open frame.
func DecodeOpen(payload []byte) (OpenInfo, error) {
	var info OpenInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return OpenInfo{}, fmt.Errorf("decode open packet: %w", err)
	}
	return info, nil
}

// EncodeEngine renders a bare Engine.IO packet such as a pong or close.
func EncodeEngine(t EngineType) []byte {
	return []byte{byte(t)}
}

// EncodePacket renders a Socket.IO packet wrapped in an Engine.IO message.
func EncodePacket(p Packet) []byte {
	buf := make([]byte, 0, 8+len(p.Namespace)+len(p.Data))
	buf = append(buf, byte(EngineMessage), byte('0'+p.Type))
	if p.Namespace != "" && p.Namespace != DefaultNamespace {
		buf = append(buf, p.Namespace...)
		buf = append(buf, ',')
	}
	if p.AckID >= 0 {
		buf = strconv.AppendInt(buf, int64(p.AckID), 10)
	}
	buf = append(buf, p.Data...)
	return buf
}

// ConnectPacket returns the frame that joins namespace.
func ConnectPacket(namespace string) []byte {
	return EncodePacket(Packet{Type: PacketConnect, Namespace: namespace, AckID: -1})
}

// DisconnectPacket returns the frame that leaves namespace.
func DisconnectPacket(namespace string) []byte {
	return EncodePacket(Packet{Type: PacketDisconnect, Namespace: namespace, AckID: -1})
}

// EncodeEvent renders an event packet with the given name and arguments.
func EncodeEvent(namespace, name string, args ...interface{}) ([]byte, error) {
	list := make([]interface{}, 0, len(args)+1)
	list = append(list, name)
	list = append(list, args...)
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", name, err)
	}
	return EncodePacket(Packet{Type: PacketEvent, Namespace: namespace, AckID: -1, Data: data}), nil
}

// EventArgs splits the data of an event packet into its name and raw arguments.
func EventArgs(data []byte) (string, [][]byte, error) {
	iter := jsoniter.ParseBytes(json, data)
	if iter.WhatIsNext() != jsoniter.ArrayValue {
		return "", nil, fmt.Errorf("%w: event data is not an array", ErrMalformedPacket)
	}
	var (
		name  string
		args  [][]byte
		first = true
		bad   bool
	)
	iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if first {
			first = false
			if it.WhatIsNext() != jsoniter.StringValue {
				bad = true
				return false
			}
			name = it.ReadString()
			return true
		}
		raw := it.SkipAndReturnBytes()
		args = append(args, append([]byte(nil), raw...))
		return true
	})
	if iter.Error != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedPacket, iter.Error)
	}
	if bad || first {
		return "", nil, fmt.Errorf("%w: event without name", ErrMalformedPacket)
	}
	return name, args, nil
}
