package pnrpc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawUUID(t *rapid.T, label string) UUID {
	var u UUID
	for i := range u {
		u[i] = rapid.Byte().Draw(t, label)
	}
	return u
}

func TestHeaderEncodeDecode(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bo := ByteOrder(rapid.IntRange(0, 1).Draw(t, "ByteOrder"))
		policy := UUIDPolicy(rapid.IntRange(0, 1).Draw(t, "UUIDPolicy"))

		hdr := &ConnectHeader{
			Version:    RPCVersion,
			PacketType: PacketRequest,
			Flags1:     rapid.Byte().Draw(t, "Flags1"),
			Flags2:     rapid.Byte().Draw(t, "Flags2"),
			ByteOrder:  bo,
			SerialHigh: rapid.Byte().Draw(t, "SerialHigh"),

			ObjectID:    drawUUID(t, "ObjectID"),
			InterfaceID: drawUUID(t, "InterfaceID"),
			ActivityID:  drawUUID(t, "ActivityID"),

			ServerBootTime:   rapid.Uint32().Draw(t, "ServerBootTime"),
			InterfaceVersion: rapid.Uint32().Draw(t, "InterfaceVersion"),
			SequenceNumber:   rapid.Uint32().Draw(t, "SequenceNumber"),
			OperationNumber:  rapid.Uint16().Draw(t, "OperationNumber"),
			InterfaceHint:    rapid.Uint16().Draw(t, "InterfaceHint"),
			ActivityHint:     rapid.Uint16().Draw(t, "ActivityHint"),
			FragmentLength:   rapid.Uint16().Draw(t, "FragmentLength"),
			FragmentNumber:   rapid.Uint16().Draw(t, "FragmentNumber"),
			AuthProtocol:     rapid.Byte().Draw(t, "AuthProtocol"),
			SerialLow:        rapid.Byte().Draw(t, "SerialLow"),
		}

		raw := EncodeHeader(hdr, policy)
		if len(raw) != HeaderSize {
			t.Fatalf("encoded header size = %d, want %d", len(raw), HeaderSize)
		}

		decoded, err := DecodeHeader(raw, policy)
		if err != nil {
			t.Fatalf("error while decoding: %+v", err)
		}

		if !cmp.Equal(hdr, decoded) {
			t.Errorf("invalid header: %s", cmp.Diff(hdr, decoded))
		}
	})
}

// The fragment length must be written in the declared byte order. A declared
// little-endian header whose length field stayed big-endian turns a 300-byte
// body into a declared 11265 bytes and kills the session setup.
func TestFragmentLengthHonorsDREP(t *testing.T) {
	require := require.New(t)

	hdr := &ConnectHeader{
		Version:        RPCVersion,
		PacketType:     PacketRequest,
		FragmentLength: 0x012C, // 300
	}

	t.Run("little-endian wire bytes", func(t *testing.T) {
		hdr.ByteOrder = LittleEndian
		raw := EncodeHeader(hdr, UUIDAsReceived)
		require.Equal(byte(0x2C), raw[74])
		require.Equal(byte(0x01), raw[75])

		decoded, err := DecodeHeader(raw, UUIDAsReceived)
		require.NoError(err)
		require.Equal(uint16(300), decoded.FragmentLength)
	})

	t.Run("big-endian wire bytes", func(t *testing.T) {
		hdr.ByteOrder = BigEndian
		raw := EncodeHeader(hdr, UUIDAsReceived)
		require.Equal(byte(0x01), raw[74])
		require.Equal(byte(0x2C), raw[75])

		decoded, err := DecodeHeader(raw, UUIDAsReceived)
		require.NoError(err)
		require.Equal(uint16(300), decoded.FragmentLength)
	})
}

func TestDecodeHeaderErrors(t *testing.T) {
	require := require.New(t)

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeHeader(make([]byte, HeaderSize-1), UUIDAsReceived)
		require.ErrorIs(err, ErrTruncatedHeader)
	})

	t.Run("bad version", func(t *testing.T) {
		raw := make([]byte, HeaderSize)
		raw[0] = 0x05
		_, err := DecodeHeader(raw, UUIDAsReceived)
		require.ErrorIs(err, ErrBadVersion)
	})

	t.Run("bad packet type", func(t *testing.T) {
		raw := make([]byte, HeaderSize)
		raw[0] = RPCVersion
		raw[1] = 0x7F
		_, err := DecodeHeader(raw, UUIDAsReceived)
		require.ErrorIs(err, ErrBadPacketType)
	})
}
