package cyclic

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

// Per-point wire sizes.
const (
	// SensorPointSize is the current sensor format: big-endian IEEE-754
	// float32 followed by one quality byte.
	SensorPointSize = 5
	// LegacySensorPointSize is the older format: float only, no quality byte.
	LegacySensorPointSize = 4
	// ActuatorPointSize is command, duty value and two reserved bytes.
	ActuatorPointSize = 4
)

// forcedFlag marks an operator override in the first reserved actuator byte.
const forcedFlag = 0x01

// SensorReading is one decoded sensor point. Produced fresh on every decode and
// never mutated afterwards.
type SensorReading struct {
	Value     float32
	Quality   Quality
	Timestamp time.Time
}

// ActuatorOutput is one actuator point to pack into the outbound frame.
type ActuatorOutput struct {
	Command byte
	Duty    byte
	Forced  bool
}

// legacyFormatOnce gates the legacy-format notice to once per process. The
// condition repeats every frame on affected devices and would flood the logs.
var legacyFormatOnce sync.Once

// UnpackSensor decodes one sensor point from data.
//
// Five or more bytes decode as the current format. Exactly four bytes decode as
// the legacy format with quality forced to Uncertain: older firmware variants
// are accepted, never refused. Fewer than four bytes is an error.
func UnpackSensor(data []byte, now time.Time) (SensorReading, error) {
	switch {
	case len(data) >= SensorPointSize:
		return SensorReading{
			Value:     math.Float32frombits(binary.BigEndian.Uint32(data[0:4])),
			Quality:   QualityFromByte(data[4]),
			Timestamp: now,
		}, nil

	case len(data) == LegacySensorPointSize:
		legacyFormatOnce.Do(func() {
			pkgLogger().Warn("legacy 4-byte sensor format on the wire, quality degraded to uncertain",
				"point_bytes", len(data))
		})

		return SensorReading{
			Value:     math.Float32frombits(binary.BigEndian.Uint32(data[0:4])),
			Quality:   QualityUncertain,
			Timestamp: now,
		}, nil

	default:
		return SensorReading{}, fmt.Errorf("%w: %d bytes", ErrPointTruncated, len(data))
	}
}

// PackActuator writes one actuator point into dst, which must be at least
// ActuatorPointSize bytes.
func PackActuator(dst []byte, out ActuatorOutput) {
	dst[0] = out.Command
	dst[1] = out.Duty
	if out.Forced {
		dst[2] = forcedFlag
	} else {
		dst[2] = 0
	}
	dst[3] = 0
}

// UnpackActuator reads one actuator point, for device simulators and tests.
func UnpackActuator(data []byte) (ActuatorOutput, error) {
	if len(data) < ActuatorPointSize {
		return ActuatorOutput{}, fmt.Errorf("%w: %d bytes", ErrPointTruncated, len(data))
	}

	return ActuatorOutput{
		Command: data[0],
		Duty:    data[1],
		Forced:  data[2]&forcedFlag != 0,
	}, nil
}
