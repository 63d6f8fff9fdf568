// Package pnrpc implements the connectionless DCE/RPC framing used to establish
// application relationships with remote terminal units.
//
// The package is pure: it serializes and deserializes connect request/response
// headers, the optional NDR argument header, and the AR/IOCR configuration blocks
// under a caller-selected byte order and UUID encoding policy. It performs no I/O
// and keeps no state, so identical inputs always produce byte-identical output.
//
// Every multi-byte header field is encoded in the byte order declared by the
// message's data-representation (DREP) label. There are no per-field exceptions:
// a header that declares little-endian carries its fragment length, sequence
// number and identifiers in little-endian, without carve-outs for fields that
// older firmware encoded differently.
package pnrpc
