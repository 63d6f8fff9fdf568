package pnrpc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleRequest(bo ByteOrder, ndrMode NDRMode) *ConnectRequest {
	return &ConnectRequest{
		Header: ConnectHeader{
			ByteOrder:       bo,
			InterfaceID:     UUID{0xDE, 0xA0, 0x00, 0x01, 0x6C, 0x97, 0x11, 0xD1, 0x82, 0x71, 0x00, 0xA0, 0x24, 0x42, 0xDF, 0x7D},
			ActivityID:      UUID{0x01},
			SequenceNumber:  7,
			OperationNumber: OpConnect,
		},
		NDRMode: ndrMode,
		AR: ARBlock{
			ARType:      1,
			ARUUID:      UUID{0xAA, 0xBB},
			SessionKey:  0x0001,
			StationName: "rtu-press-04",
		},
		InputCR: IOCRBlock{
			Direction:      IOCRInput,
			Reference:      1,
			FrameID:        0x8001,
			DataLength:     40,
			CycleFactor:    32,
			ReductionRatio: 32,
			WatchdogFactor: 3,
			DataHoldFactor: 3,
			Slots:          []uint16{0, 1, 2},
		},
		OutputCR: IOCRBlock{
			Direction:      IOCROutput,
			Reference:      2,
			FrameID:        0x8002,
			DataLength:     40,
			CycleFactor:    32,
			ReductionRatio: 32,
			WatchdogFactor: 3,
			DataHoldFactor: 3,
			Slots:          []uint16{0, 1},
		},
	}
}

func TestConnectRequestRoundTrip(t *testing.T) {
	for _, bo := range []ByteOrder{BigEndian, LittleEndian} {
		for _, policy := range []UUIDPolicy{UUIDAsReceived, UUIDFieldSwapped} {
			for _, ndrMode := range []NDRMode{NDROmit, NDRInclude} {
				t.Run(bo.String()+"/"+policy.String()+"/"+ndrMode.String(), func(t *testing.T) {
					require := require.New(t)

					req := sampleRequest(bo, ndrMode)
					raw := EncodeConnectRequest(req, policy)

					decoded, err := DecodeConnectRequest(raw, policy, ndrMode)
					require.NoError(err)

					// encode fills in version, packet type and fragment length
					want := *req
					want.Header.Version = RPCVersion
					want.Header.PacketType = PacketRequest
					want.Header.FragmentLength = decoded.Header.FragmentLength

					if !cmp.Equal(&want, decoded) {
						t.Errorf("invalid request: %s", cmp.Diff(&want, decoded))
					}
				})
			}
		}
	}
}

func TestEncodeConnectRequestDeterministic(t *testing.T) {
	require := require.New(t)

	a := EncodeConnectRequest(sampleRequest(LittleEndian, NDRInclude), UUIDFieldSwapped)
	b := EncodeConnectRequest(sampleRequest(LittleEndian, NDRInclude), UUIDFieldSwapped)
	require.Equal(a, b)
}

func TestDecodeConnectResponse(t *testing.T) {
	hdr := &ConnectHeader{ByteOrder: LittleEndian, SequenceNumber: 7}

	t.Run("accepted", func(t *testing.T) {
		require := require.New(t)

		raw := EncodeConnectResponse(hdr, UUIDAsReceived, NDRInclude, 0, 0x1234)
		rsp, err := DecodeConnectResponse(raw, UUIDAsReceived, NDRInclude)
		require.NoError(err)
		require.Equal(uint16(0), rsp.Status)
		require.Equal(uint16(0x1234), rsp.SessionKey)
		require.NotNil(rsp.NDR)
		require.Equal(uint32(10), rsp.NDR.ArgsLength)
	})

	t.Run("empty body is a rejection, not a parse failure", func(t *testing.T) {
		require := require.New(t)

		empty := *hdr
		empty.Version = RPCVersion
		empty.PacketType = PacketResponse
		empty.FragmentLength = 0
		raw := EncodeHeader(&empty, UUIDAsReceived)

		_, err := DecodeConnectResponse(raw, UUIDAsReceived, NDROmit)
		require.ErrorIs(err, ErrConnectRejected)
	})

	t.Run("reject packet", func(t *testing.T) {
		require := require.New(t)

		rej := *hdr
		rej.Version = RPCVersion
		rej.PacketType = PacketReject
		raw := EncodeHeader(&rej, UUIDAsReceived)

		_, err := DecodeConnectResponse(raw, UUIDAsReceived, NDROmit)
		require.ErrorIs(err, ErrConnectRejected)
	})

	t.Run("truncated body is malformed", func(t *testing.T) {
		require := require.New(t)

		raw := EncodeConnectResponse(hdr, UUIDAsReceived, NDROmit, 0, 1)
		_, err := DecodeConnectResponse(raw[:len(raw)-4], UUIDAsReceived, NDROmit)
		require.ErrorIs(err, ErrLengthMismatch)
	})
}
