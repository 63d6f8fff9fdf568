package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
controller:
  log_level: debug
  health:
    failure_threshold: 3
    recovery_timeout_ms: 10000
  hints:
    - vendor_id: 42
      strategy_index: 10
  devices:
    - station: rtu-01
      endpoint: 192.168.10.5:34964
      vendor_id: 42
      sensor_points: 4
      actuator_points: 2
      slots: [0, 1, 4]
      timing_profile: responsive
      connect_timeout_ms: 2000
      retry_backoff_ms: 250
    - station: rtu-02
      endpoint: 192.168.10.6:34964
      input_frame_id: 0x9001
      output_frame_id: 0x9002
      sensor_points: 16
      actuator_points: 8
`

func TestParse(t *testing.T) {
	require := require.New(t)

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(err)

	c := cfg.Controller
	require.Equal("debug", c.LogLevel)
	require.Equal(3, c.Health.FailureThreshold)
	require.Equal(10*time.Second, c.Health.RecoveryTimeout())

	require.Len(c.Hints, 1)
	require.Equal(uint16(42), c.Hints[0].VendorID)
	require.Equal(10, c.Hints[0].StrategyIndex)

	require.Len(c.Devices, 2)
	d := c.Devices[0]
	require.Equal("rtu-01", d.Station)
	require.Equal("192.168.10.5:34964", d.Endpoint)
	require.Equal(uint16(42), d.VendorID)
	require.Equal([]uint16{0, 1, 4}, d.Slots)
	require.Equal("responsive", d.TimingProfile)
	require.Equal(2*time.Second, d.ConnectTimeout())
	require.Equal(250*time.Millisecond, d.RetryBackoff())

	require.Equal(uint16(0x9001), c.Devices[1].InputFrameID)
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "controller.yaml")
	require.NoError(os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(err)
	require.Len(cfg.Controller.Devices, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		return cfg
	}

	t.Run("sample is valid", func(t *testing.T) {
		require.NoError(t, Validate(base(t)))
	})

	t.Run("nil config", func(t *testing.T) {
		require.Error(t, Validate(nil))
	})

	t.Run("no devices", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Devices = nil
		require.Error(t, Validate(cfg))
	})

	t.Run("duplicate station", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Devices[1].Station = "rtu-01"
		require.Error(t, Validate(cfg))
	})

	t.Run("empty endpoint", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Devices[0].Endpoint = ""
		require.Error(t, Validate(cfg))
	})

	t.Run("frame identifier collision", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Devices[1].OutputFrameID = 0x9001
		require.Error(t, Validate(cfg))
	})

	t.Run("unknown timing profile", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Devices[0].TimingProfile = "ludicrous"
		require.Error(t, Validate(cfg))
	})

	t.Run("reserved vendor id", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Hints[0].VendorID = 0
		require.Error(t, Validate(cfg))
	})

	t.Run("negative point count", func(t *testing.T) {
		cfg := base(t)
		cfg.Controller.Devices[0].SensorPoints = -1
		require.Error(t, Validate(cfg))
	})
}

func TestNormalize(t *testing.T) {
	require := require.New(t)

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(err)
	require.NoError(Validate(cfg))

	Normalize(cfg)

	d := cfg.Controller.Devices[0]
	require.Equal(uint16(defaultInputFrameID), d.InputFrameID)
	require.Equal(uint16(defaultOutputFrameID), d.OutputFrameID)

	// explicit values survive
	require.Equal(uint16(0x9001), cfg.Controller.Devices[1].InputFrameID)
	require.Equal([]uint16{0}, cfg.Controller.Devices[1].Slots)
	require.Equal([]uint16{0, 1, 4}, d.Slots)

	Normalize(nil) // must not panic
}
