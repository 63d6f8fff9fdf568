package pnrpc

import "errors"

var (
	// ErrTruncatedHeader indicates that the buffer is shorter than the fixed RPC header.
	ErrTruncatedHeader = errors.New("rpc header truncated")

	// ErrBadVersion indicates that the RPC version field is not the connectionless v4.
	ErrBadVersion = errors.New("unsupported rpc version")

	// ErrBadPacketType indicates a packet type outside the known set.
	ErrBadPacketType = errors.New("unknown rpc packet type")

	// ErrLengthMismatch indicates that the declared fragment length does not match
	// the bytes actually present after the header.
	ErrLengthMismatch = errors.New("fragment length does not match payload")

	// ErrConnectRejected indicates that the remote endpoint answered with an empty
	// body or an explicit reject/fault packet. The endpoint parsed the request and
	// actively refused it; this is not a parse failure.
	ErrConnectRejected = errors.New("connect rejected by remote endpoint")

	// ErrTruncatedNDR indicates that the NDR argument header is incomplete.
	ErrTruncatedNDR = errors.New("ndr argument header truncated")

	// ErrTruncatedBlock indicates that a configuration block ends before its
	// declared length.
	ErrTruncatedBlock = errors.New("configuration block truncated")

	// ErrBadBlockType indicates a configuration block type outside the known set.
	ErrBadBlockType = errors.New("unknown configuration block type")
)
