package cyclic

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Frame layout constants. The link-layer header is the transport's concern;
// frames here start at the frame identifier.
const (
	// FrameIDSize is the leading frame identifier.
	FrameIDSize = 2
	// TrailerSize is cycle counter (2), data status (1), transfer status (1).
	TrailerSize = 4
	// MinCSDUSize is the minimum cyclic payload between identifier and
	// trailer; shorter payloads are zero-padded to it.
	MinCSDUSize = 40
	// MinFrameSize is the minimum complete frame.
	MinFrameSize = FrameIDSize + MinCSDUSize + TrailerSize
)

// Data-status bits of the frame trailer.
const (
	// DataStatusPrimary signals the primary (non-backup) state.
	DataStatusPrimary byte = 0x01
	// DataStatusValid signals that the data region is valid.
	DataStatusValid byte = 0x04
	// DataStatusRun signals that the provider is in run mode.
	DataStatusRun byte = 0x10
	// DataStatusStationOK signals no station problem.
	DataStatusStationOK byte = 0x20

	// DataStatusGood is the healthy combination emitted on outbound frames.
	DataStatusGood = DataStatusPrimary | DataStatusValid | DataStatusRun | DataStatusStationOK
)

// iocsGood is the per-point "point is good" status byte.
const iocsGood byte = 0x80

// FrameResult is the decoded bookkeeping of one inbound frame.
type FrameResult struct {
	Sequence       uint16
	SeqResult      SeqResult
	DataStatus     byte
	TransferStatus byte
}

// EncodeOutputFrame builds the outbound frame for one control cycle: frame
// identifier, actuator region, one good-status byte per addressed point sized
// to the configured region, zero padding up to the minimum payload, and the
// trailer. The cycle counter advances by one per call.
func EncodeOutputFrame(ch *Channel, outputs []ActuatorOutput) ([]byte, error) {
	if ch.direction != Output {
		return nil, ErrWrongDirection
	}
	if len(outputs) > ch.pointCount {
		return nil, fmt.Errorf("%w: %d outputs for %d points", ErrPointOutOfRange, len(outputs), ch.pointCount)
	}

	regionLen := ch.pointCount * ActuatorPointSize
	csduLen := regionLen + ch.pointCount
	if csduLen < MinCSDUSize {
		csduLen = MinCSDUSize
	}

	frame := make([]byte, FrameIDSize+csduLen+TrailerSize)
	binary.BigEndian.PutUint16(frame[0:FrameIDSize], ch.frameID)

	region := frame[FrameIDSize : FrameIDSize+regionLen]
	for i, out := range outputs {
		PackActuator(region[i*ActuatorPointSize:(i+1)*ActuatorPointSize], out)
	}

	// IOCS: one status byte per addressed point, not a fixed maximum
	iocs := frame[FrameIDSize+regionLen : FrameIDSize+regionLen+ch.pointCount]
	for i := range iocs {
		iocs[i] = iocsGood
	}

	ch.cycleCounter++
	trailer := frame[len(frame)-TrailerSize:]
	binary.BigEndian.PutUint16(trailer[0:2], ch.cycleCounter)
	trailer[2] = DataStatusGood
	trailer[3] = 0

	return frame, nil
}

// DecodeInputFrame consumes one inbound frame on the channel.
//
// The frame identifier must match the channel; the declared sensor region is
// copied into the channel buffer when it fits the received payload, falling
// back to the legacy point size when only that fits; the cycle counter is
// validated against the channel's replay tracker; and the channel is stamped
// with a fresh decode timestamp. A duplicate counter discards the frame with
// ErrReplayDetected.
func DecodeInputFrame(ch *Channel, frame []byte) (*FrameResult, error) {
	if ch.direction != Input {
		return nil, ErrWrongDirection
	}
	if len(frame) < FrameIDSize+TrailerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(frame))
	}

	frameID := binary.BigEndian.Uint16(frame[0:FrameIDSize])
	if frameID != ch.frameID {
		return nil, fmt.Errorf("%w: got 0x%04x, want 0x%04x", ErrFrameIDMismatch, frameID, ch.frameID)
	}

	csdu := frame[FrameIDSize : len(frame)-TrailerSize]

	// reserve one IOPS byte per point behind the data region
	avail := len(csdu) - ch.pointCount
	if avail < 0 {
		return nil, fmt.Errorf("%w: %d bytes for %d points", ErrFrameTooShort, len(csdu), ch.pointCount)
	}

	copyLen := ch.declaredLen
	if copyLen > avail {
		copyLen = ch.pointCount * LegacySensorPointSize
		if copyLen > avail {
			return nil, fmt.Errorf("%w: region %d, payload %d", ErrRegionOverflow, copyLen, avail)
		}
	}
	copy(ch.data[:copyLen], csdu[:copyLen])
	ch.dataLen = copyLen

	trailer := frame[len(frame)-TrailerSize:]
	seq := binary.BigEndian.Uint16(trailer[0:2])

	result := &FrameResult{
		Sequence:       seq,
		SeqResult:      ch.seq.Check(seq),
		DataStatus:     trailer[2],
		TransferStatus: trailer[3],
	}

	if result.SeqResult == SeqDuplicate {
		ch.logger.Warn("replayed cyclic frame discarded", "cycle_counter", seq)
		return result, fmt.Errorf("%w: counter %d", ErrReplayDetected, seq)
	}
	if result.SeqResult == SeqGap {
		ch.logger.Debug("cycle counter gap tolerated", "cycle_counter", seq)
	}

	ch.dataStatus = result.DataStatus
	ch.lastUpdate = time.Now()

	return result, nil
}

// EncodeInputFrame builds a device-side inbound frame from sensor readings,
// for device simulators and tests.
func EncodeInputFrame(frameID uint16, readings []SensorReading, seq uint16, dataStatus byte) []byte {
	regionLen := len(readings) * SensorPointSize
	csduLen := regionLen + len(readings)
	if csduLen < MinCSDUSize {
		csduLen = MinCSDUSize
	}

	frame := make([]byte, FrameIDSize+csduLen+TrailerSize)
	binary.BigEndian.PutUint16(frame[0:FrameIDSize], frameID)

	for i, r := range readings {
		offset := FrameIDSize + i*SensorPointSize
		binary.BigEndian.PutUint32(frame[offset:offset+4], math.Float32bits(r.Value))
		frame[offset+4] = r.Quality.Byte()
	}
	for i := 0; i < len(readings); i++ {
		frame[FrameIDSize+regionLen+i] = iocsGood
	}

	trailer := frame[len(frame)-TrailerSize:]
	binary.BigEndian.PutUint16(trailer[0:2], seq)
	trailer[2] = dataStatus
	trailer[3] = 0

	return frame
}
