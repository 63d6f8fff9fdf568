package cyclic

// Quality classifies a sensor reading, following the OPC quality model.
type Quality uint8

const (
	// QualityBad marks a reading that must not be used for control.
	QualityBad Quality = iota
	// QualityUncertain marks a usable reading of reduced trust, including
	// values decoded from the legacy wire format that carries no quality byte.
	QualityUncertain
	// QualityGood marks a fully trusted reading.
	QualityGood
	// QualityNotConnected marks a point whose source is not attached.
	QualityNotConnected
)

// Wire codes for the quality byte.
const (
	QualityCodeGood         byte = 0xC0
	QualityCodeUncertain    byte = 0x40
	QualityCodeBad          byte = 0x00
	QualityCodeNotConnected byte = 0x08
)

// String returns string representation of the quality.
func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityUncertain:
		return "uncertain"
	case QualityNotConnected:
		return "not-connected"
	default:
		return "bad"
	}
}

// IsUsable reports whether the reading may feed the control loop at all.
func (q Quality) IsUsable() bool {
	return q == QualityGood || q == QualityUncertain
}

// QualityFromByte classifies a wire quality byte. The not-connected code is an
// exact match; otherwise the top two bits decide.
func QualityFromByte(b byte) Quality {
	if b == QualityCodeNotConnected {
		return QualityNotConnected
	}

	switch b & 0xC0 {
	case 0xC0:
		return QualityGood
	case 0x40:
		return QualityUncertain
	default:
		return QualityBad
	}
}

// Byte returns the canonical wire code for the quality.
func (q Quality) Byte() byte {
	switch q {
	case QualityGood:
		return QualityCodeGood
	case QualityUncertain:
		return QualityCodeUncertain
	case QualityNotConnected:
		return QualityCodeNotConnected
	default:
		return QualityCodeBad
	}
}
