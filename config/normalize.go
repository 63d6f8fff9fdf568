package config

// Defaults applied by Normalize.
const (
	defaultLogLevel          = "info"
	defaultInputFrameID      = 0x8001
	defaultOutputFrameID     = 0x8002
	defaultRecoveryTimeoutMs = 30000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	c := &cfg.Controller

	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Health.RecoveryTimeoutMs == 0 {
		c.Health.RecoveryTimeoutMs = defaultRecoveryTimeoutMs
	}

	for i := range c.Devices {
		d := &c.Devices[i]

		if d.InputFrameID == 0 {
			d.InputFrameID = defaultInputFrameID
		}
		if d.OutputFrameID == 0 {
			d.OutputFrameID = defaultOutputFrameID
		}
		if len(d.Slots) == 0 {
			d.Slots = []uint16{0}
		}
	}
}
