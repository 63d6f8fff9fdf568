package pnrpc

import (
	"encoding/binary"
	"fmt"
)

// Configuration block types carried in the connect body.
//
// Block payloads are always network byte order; only the RPC header and the NDR
// argument header obey the DREP declaration.
const (
	BlockTypeAR       uint16 = 0x0101
	BlockTypeIOCR     uint16 = 0x0102
	BlockTypeARResult uint16 = 0x8101
)

// Block format version emitted by this controller.
const (
	blockVersionHigh = 0x01
	blockVersionLow  = 0x00
)

// blockHeaderSize is type(2) + length(2) + versionHi(1) + versionLo(1).
const blockHeaderSize = 6

// IOCR directions.
const (
	IOCRInput  uint16 = 0x0001
	IOCROutput uint16 = 0x0002
)

// SlotScope selects which configured slots a connect request addresses.
//
// Conformant devices accept the full module set; some stacks only establish a
// session when the first request is limited to the head station (slot 0) and
// expect the remaining slots to be adopted afterwards.
type SlotScope uint8

const (
	// SlotScopeFull addresses every configured slot.
	SlotScopeFull SlotScope = iota
	// SlotScopeMinimal addresses only slot 0, the diagnostic head station.
	SlotScopeMinimal
)

// String returns string representation of the scope.
func (s SlotScope) String() string {
	if s == SlotScopeMinimal {
		return "minimal"
	}
	return "full"
}

// Apply filters the configured slot list down to the scope's addressed set.
// The minimal scope always yields slot 0, even if it is not configured.
func (s SlotScope) Apply(slots []uint16) []uint16 {
	if s == SlotScopeMinimal {
		return []uint16{0}
	}
	out := make([]uint16, len(slots))
	copy(out, slots)

	return out
}

// ARBlock describes the application relationship being requested.
type ARBlock struct {
	ARType      uint16
	ARUUID      UUID
	SessionKey  uint16
	StationName string
}

// IOCRBlock describes one direction of cyclic data exchange.
type IOCRBlock struct {
	Direction      uint16 // IOCRInput or IOCROutput
	Reference      uint16
	FrameID        uint16
	DataLength     uint16
	CycleFactor    uint16
	ReductionRatio uint16
	WatchdogFactor uint16
	DataHoldFactor uint16
	Slots          []uint16
}

// appendBlockHeader appends a block header; length counts the version bytes
// plus the payload that follows.
func appendBlockHeader(dst []byte, blockType uint16, payloadLen int) []byte {
	var hdr [blockHeaderSize]byte
	binary.BigEndian.PutUint16(hdr[0:2], blockType)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(payloadLen+2)) //nolint: gosec
	hdr[4] = blockVersionHigh
	hdr[5] = blockVersionLow

	return append(dst, hdr[:]...)
}

// encodeARBlock appends the AR block to dst.
func encodeARBlock(dst []byte, b *ARBlock) []byte {
	payload := 2 + UUIDSize + 2 + 2 + len(b.StationName)
	dst = appendBlockHeader(dst, BlockTypeAR, payload)

	dst = binary.BigEndian.AppendUint16(dst, b.ARType)
	dst = append(dst, b.ARUUID[:]...)
	dst = binary.BigEndian.AppendUint16(dst, b.SessionKey)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(b.StationName))) //nolint: gosec
	dst = append(dst, b.StationName...)

	return dst
}

// encodeIOCRBlock appends one IOCR block to dst.
func encodeIOCRBlock(dst []byte, b *IOCRBlock) []byte {
	payload := 8*2 + 2 + 2*len(b.Slots)
	dst = appendBlockHeader(dst, BlockTypeIOCR, payload)

	dst = binary.BigEndian.AppendUint16(dst, b.Direction)
	dst = binary.BigEndian.AppendUint16(dst, b.Reference)
	dst = binary.BigEndian.AppendUint16(dst, b.FrameID)
	dst = binary.BigEndian.AppendUint16(dst, b.DataLength)
	dst = binary.BigEndian.AppendUint16(dst, b.CycleFactor)
	dst = binary.BigEndian.AppendUint16(dst, b.ReductionRatio)
	dst = binary.BigEndian.AppendUint16(dst, b.WatchdogFactor)
	dst = binary.BigEndian.AppendUint16(dst, b.DataHoldFactor)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(b.Slots))) //nolint: gosec
	for _, slot := range b.Slots {
		dst = binary.BigEndian.AppendUint16(dst, slot)
	}

	return dst
}

// blockCursor is a bounds-checked reader over a connect body. Every read
// validates the remaining length; there is no way to read past the region.
type blockCursor struct {
	data []byte
	pos  int
}

func (c *blockCursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *blockCursor) read(n int) ([]byte, error) {
	if c.pos+n > len(c.data) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedBlock, n, c.remaining())
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n

	return out, nil
}

func (c *blockCursor) readUint16() (uint16, error) {
	b, err := c.read(2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

// decodeARBlock parses an AR block payload (header already consumed).
func decodeARBlock(c *blockCursor) (*ARBlock, error) {
	arType, err := c.readUint16()
	if err != nil {
		return nil, err
	}
	raw, err := c.read(UUIDSize)
	if err != nil {
		return nil, err
	}
	sessionKey, err := c.readUint16()
	if err != nil {
		return nil, err
	}
	nameLen, err := c.readUint16()
	if err != nil {
		return nil, err
	}
	name, err := c.read(int(nameLen))
	if err != nil {
		return nil, err
	}

	return &ARBlock{
		ARType:      arType,
		ARUUID:      uuidAt(raw),
		SessionKey:  sessionKey,
		StationName: string(name),
	}, nil
}

// decodeIOCRBlock parses an IOCR block payload (header already consumed).
func decodeIOCRBlock(c *blockCursor) (*IOCRBlock, error) {
	var fields [8]uint16
	for i := range fields {
		v, err := c.readUint16()
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	slotCount, err := c.readUint16()
	if err != nil {
		return nil, err
	}
	slots := make([]uint16, slotCount)
	for i := range slots {
		v, err := c.readUint16()
		if err != nil {
			return nil, err
		}
		slots[i] = v
	}

	return &IOCRBlock{
		Direction:      fields[0],
		Reference:      fields[1],
		FrameID:        fields[2],
		DataLength:     fields[3],
		CycleFactor:    fields[4],
		ReductionRatio: fields[5],
		WatchdogFactor: fields[6],
		DataHoldFactor: fields[7],
		Slots:          slots,
	}, nil
}
