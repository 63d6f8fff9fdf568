package pnrpc

import (
	"fmt"
)

const (
	// HeaderSize is the fixed size of the connectionless RPC header in bytes.
	HeaderSize = 80

	// RPCVersion is the connectionless DCE/RPC protocol version.
	RPCVersion = 0x04
)

// PacketType identifies the RPC message kind carried in header byte 1.
type PacketType uint8

// Connectionless RPC packet types used during connection establishment.
const (
	PacketRequest  PacketType = 0
	PacketPing     PacketType = 1
	PacketResponse PacketType = 2
	PacketFault    PacketType = 3
	PacketWorking  PacketType = 4
	PacketNoCall   PacketType = 5
	PacketReject   PacketType = 6
	PacketAck      PacketType = 7
)

// String returns string representation of the packet type.
func (t PacketType) String() string {
	switch t {
	case PacketRequest:
		return "request"
	case PacketPing:
		return "ping"
	case PacketResponse:
		return "response"
	case PacketFault:
		return "fault"
	case PacketWorking:
		return "working"
	case PacketNoCall:
		return "nocall"
	case PacketReject:
		return "reject"
	case PacketAck:
		return "ack"
	default:
		return "unknown"
	}
}

// valid reports whether the packet type is in the known set.
func (t PacketType) valid() bool {
	return t <= PacketAck
}

// Operation numbers dispatched by the device-side connect interface.
const (
	// OpConnect is the standard connect operation.
	OpConnect uint16 = 0
	// OpRelease tears down an established application relationship.
	OpRelease uint16 = 1
	// OpRead and OpWrite carry acyclic record access.
	OpRead  uint16 = 2
	OpWrite uint16 = 3
	// OpControl is the session control operation. Some legacy stacks dispatch
	// the initial connect on this number instead of OpConnect.
	OpControl uint16 = 4
)

// ConnectHeader is the decoded form of the 80-byte connectionless RPC header.
type ConnectHeader struct {
	Version    uint8
	PacketType PacketType
	Flags1     uint8
	Flags2     uint8
	ByteOrder  ByteOrder
	SerialHigh uint8

	ObjectID    UUID
	InterfaceID UUID
	ActivityID  UUID

	ServerBootTime   uint32
	InterfaceVersion uint32
	SequenceNumber   uint32
	OperationNumber  uint16
	InterfaceHint    uint16
	ActivityHint     uint16
	FragmentLength   uint16
	FragmentNumber   uint16
	AuthProtocol     uint8
	SerialLow        uint8
}

// EncodeHeader serializes the header into a fresh HeaderSize byte slice.
//
// All multi-byte fields are written in h.ByteOrder; the three identifiers are
// first transformed by the given UUID policy. The output is byte-for-byte
// deterministic for identical inputs.
func EncodeHeader(h *ConnectHeader, policy UUIDPolicy) []byte {
	buf := make([]byte, HeaderSize)
	ord := h.ByteOrder.order()

	buf[0] = h.Version
	buf[1] = byte(h.PacketType)
	buf[2] = h.Flags1
	buf[3] = h.Flags2
	buf[4] = h.ByteOrder.drepByte()
	// DREP bytes 1-2: IEEE float representation, reserved.
	buf[5] = 0
	buf[6] = 0
	buf[7] = h.SerialHigh

	copyUUID(buf[8:24], policy.apply(h.ObjectID))
	copyUUID(buf[24:40], policy.apply(h.InterfaceID))
	copyUUID(buf[40:56], policy.apply(h.ActivityID))

	ord.PutUint32(buf[56:60], h.ServerBootTime)
	ord.PutUint32(buf[60:64], h.InterfaceVersion)
	ord.PutUint32(buf[64:68], h.SequenceNumber)
	ord.PutUint16(buf[68:70], h.OperationNumber)
	ord.PutUint16(buf[70:72], h.InterfaceHint)
	ord.PutUint16(buf[72:74], h.ActivityHint)
	ord.PutUint16(buf[74:76], h.FragmentLength)
	ord.PutUint16(buf[76:78], h.FragmentNumber)
	buf[78] = h.AuthProtocol
	buf[79] = h.SerialLow

	return buf
}

// DecodeHeader parses the 80-byte RPC header at the start of data.
//
// The byte order is taken from the message's own DREP label and applied to
// every multi-byte field, fragment length included. The UUID policy must match
// the one the request was encoded with for the identifiers to round-trip.
func DecodeHeader(data []byte, policy UUIDPolicy) (*ConnectHeader, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHeader, HeaderSize, len(data))
	}

	if data[0] != RPCVersion {
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadVersion, data[0])
	}

	ptype := PacketType(data[1])
	if !ptype.valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadPacketType, data[1])
	}

	bo := orderFromDREP(data[4])
	ord := bo.order()

	h := &ConnectHeader{
		Version:    data[0],
		PacketType: ptype,
		Flags1:     data[2],
		Flags2:     data[3],
		ByteOrder:  bo,
		SerialHigh: data[7],

		ObjectID:    policy.apply(uuidAt(data[8:24])),
		InterfaceID: policy.apply(uuidAt(data[24:40])),
		ActivityID:  policy.apply(uuidAt(data[40:56])),

		ServerBootTime:   ord.Uint32(data[56:60]),
		InterfaceVersion: ord.Uint32(data[60:64]),
		SequenceNumber:   ord.Uint32(data[64:68]),
		OperationNumber:  ord.Uint16(data[68:70]),
		InterfaceHint:    ord.Uint16(data[70:72]),
		ActivityHint:     ord.Uint16(data[72:74]),
		FragmentLength:   ord.Uint16(data[74:76]),
		FragmentNumber:   ord.Uint16(data[76:78]),
		AuthProtocol:     data[78],
		SerialLow:        data[79],
	}

	return h, nil
}
