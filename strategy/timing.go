package strategy

import (
	"errors"
	"time"
)

// baseCycleUnit is the base cycle time unit; a cycle factor of 32 yields the
// default 1 ms base tick.
const baseCycleUnit = 31250 * time.Nanosecond

// alarmTimeoutUnit is the unit of the alarm retransmit timeout factor.
const alarmTimeoutUnit = 100 * time.Millisecond

// ProfileID names one of the built-in timing presets.
type ProfileID uint8

const (
	// ProfileResponsive is the default preset, balanced for standard devices.
	ProfileResponsive ProfileID = iota
	// ProfileAggressive shortens the update interval for fast control loops.
	ProfileAggressive
	// ProfileRelaxed stretches every interval for slow or heavily loaded
	// devices that drop out under the default timing.
	ProfileRelaxed
)

// String returns string representation of the profile.
func (id ProfileID) String() string {
	switch id {
	case ProfileAggressive:
		return "aggressive"
	case ProfileRelaxed:
		return "relaxed"
	default:
		return "responsive"
	}
}

// TimingProfile is an immutable set of cycle and supervision parameters used
// during session setup.
type TimingProfile struct {
	ID ProfileID

	// CycleFactor scales the base cycle unit; 32 is a 1 ms base tick.
	CycleFactor uint16
	// ReductionRatio spaces data updates to every ReductionRatio-th base cycle.
	ReductionRatio uint16
	// WatchdogFactor expires the channel after this many missed updates.
	WatchdogFactor uint16
	// DataHoldFactor holds the last outputs for this many update intervals
	// after the watchdog fires before the device substitutes safe values.
	DataHoldFactor uint16
	// AlarmTimeoutFactor scales the alarm retransmit timeout unit.
	AlarmTimeoutFactor uint16
	// AlarmRetries is the alarm retransmit attempt count.
	AlarmRetries uint8
}

// Built-in presets. The relationships hold by construction: the watchdog covers
// at least one full update interval and the alarm timeout dwarfs the watchdog.
var (
	responsiveProfile = TimingProfile{
		ID:                 ProfileResponsive,
		CycleFactor:        32,
		ReductionRatio:     32,
		WatchdogFactor:     3,
		DataHoldFactor:     3,
		AlarmTimeoutFactor: 10,
		AlarmRetries:       3,
	}

	aggressiveProfile = TimingProfile{
		ID:                 ProfileAggressive,
		CycleFactor:        32,
		ReductionRatio:     16,
		WatchdogFactor:     3,
		DataHoldFactor:     3,
		AlarmTimeoutFactor: 10,
		AlarmRetries:       3,
	}

	relaxedProfile = TimingProfile{
		ID:                 ProfileRelaxed,
		CycleFactor:        32,
		ReductionRatio:     128,
		WatchdogFactor:     6,
		DataHoldFactor:     6,
		AlarmTimeoutFactor: 30,
		AlarmRetries:       5,
	}
)

// Profiles returns the three presets in table order: responsive first (the
// default), then aggressive, then relaxed.
func Profiles() []*TimingProfile {
	return []*TimingProfile{&responsiveProfile, &aggressiveProfile, &relaxedProfile}
}

// ProfileByID returns the preset for the given ID, defaulting to responsive.
func ProfileByID(id ProfileID) *TimingProfile {
	switch id {
	case ProfileAggressive:
		return &aggressiveProfile
	case ProfileRelaxed:
		return &relaxedProfile
	default:
		return &responsiveProfile
	}
}

// ParseProfile maps a profile name to its ID.
func ParseProfile(name string) (ProfileID, error) {
	switch name {
	case "", "responsive", "default":
		return ProfileResponsive, nil
	case "aggressive":
		return ProfileAggressive, nil
	case "relaxed":
		return ProfileRelaxed, nil
	default:
		return ProfileResponsive, errors.New("unknown timing profile: " + name)
	}
}

// CycleInterval returns the base cycle period.
func (p *TimingProfile) CycleInterval() time.Duration {
	return time.Duration(p.CycleFactor) * baseCycleUnit
}

// UpdateInterval returns the data update period.
func (p *TimingProfile) UpdateInterval() time.Duration {
	return time.Duration(p.ReductionRatio) * p.CycleInterval()
}

// WatchdogDuration returns how long a channel may stay silent before it is
// considered expired. Never below one update interval.
func (p *TimingProfile) WatchdogDuration() time.Duration {
	return time.Duration(p.WatchdogFactor) * p.UpdateInterval()
}

// DataHoldDuration returns the output hold time after watchdog expiry.
func (p *TimingProfile) DataHoldDuration() time.Duration {
	return time.Duration(p.DataHoldFactor) * p.UpdateInterval()
}

// AlarmTimeout returns the alarm retransmit timeout.
func (p *TimingProfile) AlarmTimeout() time.Duration {
	return time.Duration(p.AlarmTimeoutFactor) * alarmTimeoutUnit
}
