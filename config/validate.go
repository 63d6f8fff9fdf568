package config

import (
	"fmt"

	"github.com/avtomat-labs/go-fieldbus/strategy"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if len(cfg.Controller.Devices) == 0 {
		return fmt.Errorf("no devices configured")
	}

	if cfg.Controller.Health.FailureThreshold < 0 {
		return fmt.Errorf("health: failure_threshold must not be negative")
	}
	if cfg.Controller.Health.RecoveryTimeoutMs < 0 {
		return fmt.Errorf("health: recovery_timeout_ms must not be negative")
	}

	for _, h := range cfg.Controller.Hints {
		if h.VendorID == 0 {
			return fmt.Errorf("hints: vendor_id 0 is reserved for unknown vendors")
		}
		if h.StrategyIndex < 0 {
			return fmt.Errorf("hints: vendor 0x%04x: strategy_index must not be negative", h.VendorID)
		}
	}

	stations := make(map[string]struct{}, len(cfg.Controller.Devices))
	for _, d := range cfg.Controller.Devices {
		if d.Station == "" {
			return fmt.Errorf("device: station name is empty")
		}
		if _, dup := stations[d.Station]; dup {
			return fmt.Errorf("device %q: duplicate station name", d.Station)
		}
		stations[d.Station] = struct{}{}

		if d.Endpoint == "" {
			return fmt.Errorf("device %q: endpoint is empty", d.Station)
		}
		if d.SensorPoints < 0 || d.ActuatorPoints < 0 {
			return fmt.Errorf("device %q: point counts must not be negative", d.Station)
		}

		// zero frame identifiers are filled in by Normalize
		if d.InputFrameID != 0 && d.InputFrameID == d.OutputFrameID {
			return fmt.Errorf("device %q: input and output frame identifiers collide: 0x%04x",
				d.Station, d.InputFrameID)
		}

		if d.TimingProfile != "" {
			if _, err := strategy.ParseProfile(d.TimingProfile); err != nil {
				return fmt.Errorf("device %q: %w", d.Station, err)
			}
		}

		if d.ConnectTimeoutMs < 0 || d.RetryBackoffMs < 0 || d.DecodeErrorLimit < 0 {
			return fmt.Errorf("device %q: timing values must not be negative", d.Station)
		}
	}

	return nil
}
