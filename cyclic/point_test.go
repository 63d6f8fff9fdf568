package cyclic

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sensorBytes(v float32, quality byte) []byte {
	out := make([]byte, SensorPointSize)
	binary.BigEndian.PutUint32(out[0:4], math.Float32bits(v))
	out[4] = quality
	return out
}

func TestUnpackSensor(t *testing.T) {
	now := time.Now()

	t.Run("current format", func(t *testing.T) {
		require := require.New(t)

		r, err := UnpackSensor(sensorBytes(21.5, QualityCodeGood), now)
		require.NoError(err)
		require.Equal(float32(21.5), r.Value)
		require.Equal(QualityGood, r.Quality)
		require.Equal(now, r.Timestamp)
	})

	t.Run("legacy 4-byte format degrades to uncertain", func(t *testing.T) {
		require := require.New(t)

		r, err := UnpackSensor(sensorBytes(-3.25, QualityCodeGood)[:4], now)
		require.NoError(err)
		require.Equal(float32(-3.25), r.Value)
		require.Equal(QualityUncertain, r.Quality, "legacy points are never good and never an error")
	})

	t.Run("truncated point", func(t *testing.T) {
		require := require.New(t)

		_, err := UnpackSensor([]byte{0x01, 0x02, 0x03}, now)
		require.ErrorIs(err, ErrPointTruncated)
	})
}

func TestQualityFromByte(t *testing.T) {
	require := require.New(t)

	require.Equal(QualityGood, QualityFromByte(0xC0))
	require.Equal(QualityGood, QualityFromByte(0xC3), "substatus bits do not demote good")
	require.Equal(QualityUncertain, QualityFromByte(0x40))
	require.Equal(QualityBad, QualityFromByte(0x00))
	require.Equal(QualityNotConnected, QualityFromByte(0x08))

	require.True(QualityGood.IsUsable())
	require.True(QualityUncertain.IsUsable())
	require.False(QualityBad.IsUsable())
	require.False(QualityNotConnected.IsUsable())
}

func TestActuatorRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, out := range []ActuatorOutput{
		{Command: 0x02, Duty: 128, Forced: false},
		{Command: 0xFF, Duty: 0, Forced: true},
	} {
		buf := make([]byte, ActuatorPointSize)
		PackActuator(buf, out)

		got, err := UnpackActuator(buf)
		require.NoError(err)
		require.Equal(out, got)
	}

	_, err := UnpackActuator([]byte{1, 2})
	require.ErrorIs(err, ErrPointTruncated)
}
