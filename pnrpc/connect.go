package pnrpc

import (
	"encoding/binary"
	"fmt"
)

// ConnectRequest is the full connect message: RPC header, optional NDR argument
// header, AR block and one IOCR block per direction.
type ConnectRequest struct {
	Header   ConnectHeader
	NDRMode  NDRMode
	AR       ARBlock
	InputCR  IOCRBlock
	OutputCR IOCRBlock
}

// ConnectResponse is the decoded connect answer.
type ConnectResponse struct {
	Header *ConnectHeader
	NDR    *NDRHeader

	// Status is the AR result status word, 0 on acceptance.
	Status     uint16
	SessionKey uint16
}

// EncodeConnectRequest serializes a complete connect request.
//
// The fragment length is computed over the encoded body and written in the
// header's declared byte order, like every other multi-byte header field.
// The caller's FragmentLength value is ignored.
func EncodeConnectRequest(req *ConnectRequest, policy UUIDPolicy) []byte {
	var body []byte
	body = encodeARBlock(body, &req.AR)
	body = encodeIOCRBlock(body, &req.InputCR)
	body = encodeIOCRBlock(body, &req.OutputCR)

	if req.NDRMode == NDRInclude {
		ndr := encodeNDR(nil, NewNDRHeader(len(body)), req.Header.ByteOrder)
		body = append(ndr, body...)
	}

	hdr := req.Header
	hdr.Version = RPCVersion
	hdr.PacketType = PacketRequest
	hdr.FragmentLength = uint16(len(body)) //nolint: gosec

	out := EncodeHeader(&hdr, policy)

	return append(out, body...)
}

// DecodeConnectResponse parses a connect answer.
//
// The byte order for the header is taken from the message's own DREP label.
// An explicit reject or fault packet, and a response with a zero-length body,
// are both reported as ErrConnectRejected: the endpoint understood the request
// and refused it. A body shorter than the declared fragment length is reported
// as ErrLengthMismatch, a transport-level malformation.
func DecodeConnectResponse(data []byte, policy UUIDPolicy, ndrMode NDRMode) (*ConnectResponse, error) {
	hdr, err := DecodeHeader(data, policy)
	if err != nil {
		return nil, err
	}

	if hdr.PacketType == PacketReject || hdr.PacketType == PacketFault || hdr.PacketType == PacketNoCall {
		return nil, fmt.Errorf("%w: packet type %s", ErrConnectRejected, hdr.PacketType)
	}
	if hdr.PacketType != PacketResponse {
		return nil, fmt.Errorf("%w: 0x%02x in response", ErrBadPacketType, uint8(hdr.PacketType))
	}

	body := data[HeaderSize:]
	if hdr.FragmentLength == 0 || len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrConnectRejected)
	}
	if len(body) < int(hdr.FragmentLength) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrLengthMismatch, hdr.FragmentLength, len(body))
	}
	body = body[:hdr.FragmentLength]

	rsp := &ConnectResponse{Header: hdr}

	if ndrMode == NDRInclude {
		ndr, err := decodeNDR(body, hdr.ByteOrder)
		if err != nil {
			return nil, err
		}
		rsp.NDR = &ndr
		body = body[NDRHeaderSize:]
	}

	status, sessionKey, err := decodeARResult(body)
	if err != nil {
		return nil, err
	}
	rsp.Status = status
	rsp.SessionKey = sessionKey

	return rsp, nil
}

// EncodeConnectResponse serializes a minimal connect answer. Used by device
// simulators and tests; a real RTU builds its own.
func EncodeConnectResponse(hdr *ConnectHeader, policy UUIDPolicy, ndrMode NDRMode, status, sessionKey uint16) []byte {
	var body []byte
	body = appendBlockHeader(body, BlockTypeARResult, 4)
	body = binary.BigEndian.AppendUint16(body, status)
	body = binary.BigEndian.AppendUint16(body, sessionKey)

	if ndrMode == NDRInclude {
		ndr := encodeNDR(nil, NewNDRHeader(len(body)), hdr.ByteOrder)
		body = append(ndr, body...)
	}

	out := *hdr
	out.Version = RPCVersion
	out.PacketType = PacketResponse
	out.FragmentLength = uint16(len(body)) //nolint: gosec

	return append(EncodeHeader(&out, policy), body...)
}

// decodeARResult parses the AR result block: status word and granted session key.
func decodeARResult(body []byte) (status, sessionKey uint16, err error) {
	c := &blockCursor{data: body}

	blockType, err := c.readUint16()
	if err != nil {
		return 0, 0, err
	}
	if blockType != BlockTypeARResult {
		return 0, 0, fmt.Errorf("%w: 0x%04x", ErrBadBlockType, blockType)
	}
	if _, err = c.readUint16(); err != nil { // block length
		return 0, 0, err
	}
	if _, err = c.read(2); err != nil { // block version
		return 0, 0, err
	}
	status, err = c.readUint16()
	if err != nil {
		return 0, 0, err
	}
	sessionKey, err = c.readUint16()
	if err != nil {
		return 0, 0, err
	}

	return status, sessionKey, nil
}

// DecodeConnectRequest parses a connect request, for device simulators and tests.
func DecodeConnectRequest(data []byte, policy UUIDPolicy, ndrMode NDRMode) (*ConnectRequest, error) {
	hdr, err := DecodeHeader(data, policy)
	if err != nil {
		return nil, err
	}
	if hdr.PacketType != PacketRequest {
		return nil, fmt.Errorf("%w: 0x%02x in request", ErrBadPacketType, uint8(hdr.PacketType))
	}

	body := data[HeaderSize:]
	if len(body) < int(hdr.FragmentLength) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrLengthMismatch, hdr.FragmentLength, len(body))
	}
	body = body[:hdr.FragmentLength]

	req := &ConnectRequest{Header: *hdr, NDRMode: ndrMode}

	if ndrMode == NDRInclude {
		if _, err := decodeNDR(body, hdr.ByteOrder); err != nil {
			return nil, err
		}
		body = body[NDRHeaderSize:]
	}

	c := &blockCursor{data: body}
	for c.remaining() >= blockHeaderSize {
		blockType, err := c.readUint16()
		if err != nil {
			return nil, err
		}
		if _, err = c.readUint16(); err != nil { // block length
			return nil, err
		}
		if _, err = c.read(2); err != nil { // block version
			return nil, err
		}

		switch blockType {
		case BlockTypeAR:
			ar, err := decodeARBlock(c)
			if err != nil {
				return nil, err
			}
			req.AR = *ar
		case BlockTypeIOCR:
			iocr, err := decodeIOCRBlock(c)
			if err != nil {
				return nil, err
			}
			if iocr.Direction == IOCROutput {
				req.OutputCR = *iocr
			} else {
				req.InputCR = *iocr
			}
		default:
			return nil, fmt.Errorf("%w: 0x%04x", ErrBadBlockType, blockType)
		}
	}

	return req, nil
}
