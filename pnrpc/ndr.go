package pnrpc

import "fmt"

// NDRHeaderSize is the size of the optional NDR argument header in bytes.
const NDRHeaderSize = 20

// NDRMode selects whether the optional NDR argument header is emitted between
// the RPC header and the configuration blocks.
//
// Some device stacks require the header and reject connects without it; others
// treat its presence as a malformed request. Neither behavior is knowable in
// advance, so the mode is a negotiation axis.
type NDRMode uint8

const (
	// NDROmit leaves the argument header out.
	NDROmit NDRMode = iota
	// NDRInclude emits the 20-byte argument header.
	NDRInclude
)

// String returns string representation of the mode.
func (m NDRMode) String() string {
	if m == NDRInclude {
		return "ndr-present"
	}
	return "ndr-absent"
}

// NDRHeader is the optional argument header describing the marshalled body.
type NDRHeader struct {
	ArgsMaximum  uint32
	ArgsLength   uint32
	MaximumCount uint32
	Offset       uint32
	ActualCount  uint32
}

// NewNDRHeader builds an argument header for a body of bodyLen bytes.
func NewNDRHeader(bodyLen int) NDRHeader {
	n := uint32(bodyLen) //nolint: gosec
	return NDRHeader{
		ArgsMaximum:  n,
		ArgsLength:   n,
		MaximumCount: n,
		Offset:       0,
		ActualCount:  n,
	}
}

// encodeNDR appends the header to dst in the declared byte order.
func encodeNDR(dst []byte, h NDRHeader, bo ByteOrder) []byte {
	ord := bo.order()
	var buf [NDRHeaderSize]byte
	ord.PutUint32(buf[0:4], h.ArgsMaximum)
	ord.PutUint32(buf[4:8], h.ArgsLength)
	ord.PutUint32(buf[8:12], h.MaximumCount)
	ord.PutUint32(buf[12:16], h.Offset)
	ord.PutUint32(buf[16:20], h.ActualCount)

	return append(dst, buf[:]...)
}

// decodeNDR parses an argument header in the declared byte order.
func decodeNDR(data []byte, bo ByteOrder) (NDRHeader, error) {
	if len(data) < NDRHeaderSize {
		return NDRHeader{}, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedNDR, NDRHeaderSize, len(data))
	}
	ord := bo.order()

	return NDRHeader{
		ArgsMaximum:  ord.Uint32(data[0:4]),
		ArgsLength:   ord.Uint32(data[4:8]),
		MaximumCount: ord.Uint32(data[8:12]),
		Offset:       ord.Uint32(data[12:16]),
		ActualCount:  ord.Uint32(data[16:20]),
	}, nil
}
