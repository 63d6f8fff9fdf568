package cyclic

import (
	"fmt"
	"time"

	"github.com/avtomat-labs/go-fieldbus/logger"
)

// MinRegionSize is the protocol-mandated minimum data region allocation.
// Both channel directions always get a region, even with zero application
// data, because the protocol requires both channel types to exist.
const MinRegionSize = 40

// Direction distinguishes the two communication relationships of a session.
type Direction uint8

const (
	// Input carries device sensor data toward the controller.
	Input Direction = iota
	// Output carries controller actuator data toward the device.
	Output
)

// String returns string representation of the direction.
func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// pkgLogger returns the package default logger. Channels created without an
// explicit logger use it.
func pkgLogger() logger.Logger {
	return logger.GetLogger()
}

// Channel is one direction of cyclic data exchange: the buffer the raw region
// is copied into, the per-channel sequence tracker, and the cycle bookkeeping.
// Channels belong to exactly one session and are never shared.
type Channel struct {
	direction  Direction
	frameID    uint16
	pointCount int
	logger     logger.Logger

	// data is the region buffer, always allocated at the larger of the
	// configured point region and MinRegionSize.
	data []byte
	// declaredLen is the negotiated data region length in bytes. Defaults to
	// the current-format region; a device that only speaks the legacy format
	// grants a smaller region during the handshake.
	declaredLen int
	// dataLen is the number of region bytes actually received in the most
	// recent frame. It decides the per-point stride on readout.
	dataLen int

	seq          SequenceTracker
	cycleCounter uint16
	dataStatus   byte
	lastUpdate   time.Time
}

// NewChannel creates a channel for the given direction, frame identifier and
// addressed point count.
func NewChannel(direction Direction, frameID uint16, pointCount int, log logger.Logger) *Channel {
	pointSize := SensorPointSize
	if direction == Output {
		pointSize = ActuatorPointSize
	}

	size := pointCount * pointSize
	if size < MinRegionSize {
		size = MinRegionSize
	}

	if log == nil {
		log = pkgLogger()
	}

	return &Channel{
		direction:   direction,
		frameID:     frameID,
		pointCount:  pointCount,
		logger:      log.With("frame_id", fmt.Sprintf("0x%04x", frameID), "direction", direction.String()),
		data:        make([]byte, size),
		declaredLen: pointCount * pointSize,
	}
}

// SetDeclaredLength records the data region length granted during the
// handshake. Lengths beyond the allocated buffer are a configuration error.
func (ch *Channel) SetDeclaredLength(n int) error {
	if n < 0 || n > len(ch.data) {
		return fmt.Errorf("%w: declared %d, buffer %d", ErrRegionOverflow, n, len(ch.data))
	}
	ch.declaredLen = n

	return nil
}

// Direction returns the channel direction.
func (ch *Channel) Direction() Direction { return ch.direction }

// FrameID returns the channel's frame identifier.
func (ch *Channel) FrameID() uint16 { return ch.frameID }

// PointCount returns the number of addressed points.
func (ch *Channel) PointCount() int { return ch.pointCount }

// RegionSize returns the allocated region size in bytes.
func (ch *Channel) RegionSize() int { return len(ch.data) }

// DataStatus returns the data-status byte of the most recent inbound frame.
func (ch *Channel) DataStatus() byte { return ch.dataStatus }

// LastUpdate returns the decode timestamp of the most recent inbound frame.
func (ch *Channel) LastUpdate() time.Time { return ch.lastUpdate }

// CycleCounter returns the current outbound cycle counter.
func (ch *Channel) CycleCounter() uint16 { return ch.cycleCounter }

// ResetSequence clears the replay tracker. Called on a handshake reset of this
// channel; a fresh connection starts a fresh counter stream.
func (ch *Channel) ResetSequence() {
	ch.seq.Reset()
}

// sensorStride returns the per-point stride of the most recently received
// region: the current 5-byte format when the region carries it, the legacy
// 4-byte format otherwise.
func (ch *Channel) sensorStride() int {
	if ch.pointCount == 0 {
		return SensorPointSize
	}
	if ch.dataLen >= ch.pointCount*SensorPointSize {
		return SensorPointSize
	}

	return LegacySensorPointSize
}

// Reading decodes the sensor point at the given index from the channel buffer.
//
// The point stride follows the received format; legacy 4-byte points decode
// with quality Uncertain.
func (ch *Channel) Reading(point int) (SensorReading, error) {
	if ch.direction != Input {
		return SensorReading{}, ErrWrongDirection
	}
	if point < 0 || point >= ch.pointCount {
		return SensorReading{}, fmt.Errorf("%w: %d of %d", ErrPointOutOfRange, point, ch.pointCount)
	}

	stride := ch.sensorStride()
	offset := point * stride
	end := offset + stride
	if end > ch.dataLen {
		end = ch.dataLen
	}
	if end <= offset {
		return SensorReading{}, fmt.Errorf("%w: point %d beyond received data", ErrPointTruncated, point)
	}

	return UnpackSensor(ch.data[offset:end], ch.lastUpdate)
}

// Readings decodes every addressed point. Points that cannot be decoded are
// returned as not-connected rather than failing the whole frame.
func (ch *Channel) Readings() []SensorReading {
	out := make([]SensorReading, ch.pointCount)
	for i := range out {
		r, err := ch.Reading(i)
		if err != nil {
			r = SensorReading{Quality: QualityNotConnected, Timestamp: ch.lastUpdate}
		}
		out[i] = r
	}

	return out
}
