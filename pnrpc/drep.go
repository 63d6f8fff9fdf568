package pnrpc

import "encoding/binary"

// ByteOrder is the integer byte order declared by an RPC message's
// data-representation (DREP) label.
type ByteOrder uint8

const (
	// BigEndian declares network byte order for all multi-byte header fields.
	BigEndian ByteOrder = iota
	// LittleEndian declares little-endian order for all multi-byte header fields.
	LittleEndian
)

// String returns string representation of the byte order.
func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

// order returns the binary.ByteOrder implementing this declaration.
func (o ByteOrder) order() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// DREP label layout: byte 0 carries the character set in the low nibble and the
// integer order in the high nibble (0 = big-endian, 1 = little-endian); bytes 1
// and 2 declare the float representation and are always IEEE (0).
const drepLittleEndianFlag = 0x10

// drepByte returns DREP byte 0 for this order.
func (o ByteOrder) drepByte() byte {
	if o == LittleEndian {
		return drepLittleEndianFlag
	}
	return 0x00
}

// orderFromDREP extracts the declared byte order from DREP byte 0.
func orderFromDREP(b byte) ByteOrder {
	if b&drepLittleEndianFlag != 0 {
		return LittleEndian
	}
	return BigEndian
}
