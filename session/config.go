package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/avtomat-labs/go-fieldbus/health"
	"github.com/avtomat-labs/go-fieldbus/internal/util"
	"github.com/avtomat-labs/go-fieldbus/logger"
	"github.com/avtomat-labs/go-fieldbus/strategy"
)

// Configuration defaults.
const (
	defaultConnectTimeout   = 3 * time.Second
	defaultRetryBackoff     = 500 * time.Millisecond
	defaultCommandQueueSize = 64
	defaultDecodeErrorLimit = 16
)

// Config carries the per-session configuration. Create it with NewConfig and
// customize it with ConfigOption functions.
type Config struct {
	// stationName identifies the remote terminal unit.
	stationName string

	// vendorID is the device vendor identifier used for the strategy fast path.
	// Zero means unknown vendor, no hint lookup.
	vendorID uint16

	// inputFrameID and outputFrameID identify the two cyclic channels.
	inputFrameID  uint16
	outputFrameID uint16

	// sensorPoints and actuatorPoints are the addressed point counts per direction.
	sensorPoints   int
	actuatorPoints int

	// slots is the configured module slot set addressed by full-scope connects.
	slots []uint16

	// table is the strategy table to walk. Defaults to strategy.DefaultTable().
	table []strategy.Strategy

	// hints is the vendor hint registry. Defaults to the process-wide registry.
	hints *strategy.HintRegistry

	// monitor gates connect attempts. Defaults to a fresh monitor owning only
	// this session's component.
	monitor *health.Monitor

	// connectTimeout bounds one connect attempt on the wire.
	connectTimeout time.Duration

	// retryBackoff is the wall-clock pause between failed connect attempts.
	// It lives in the outer retry loop, never in the cyclic path.
	retryBackoff time.Duration

	// commandQueueSize bounds the operator command mailbox.
	commandQueueSize int

	// decodeErrorLimit is the number of consecutive inbound decode failures
	// tolerated before the session drops back to connecting.
	decodeErrorLimit int

	// publisher receives the per-cycle state snapshot. Optional; nil tolerated.
	publisher Publisher

	logger logger.Logger
}

// ConfigOption customizes a Config.
type ConfigOption func(*Config)

// WithVendorID sets the device vendor identifier for the strategy fast path.
func WithVendorID(id uint16) ConfigOption {
	return func(c *Config) { c.vendorID = id }
}

// WithFrameIDs sets the cyclic frame identifiers for both directions.
func WithFrameIDs(input, output uint16) ConfigOption {
	return func(c *Config) { c.inputFrameID, c.outputFrameID = input, output }
}

// WithPoints sets the addressed point counts per direction.
func WithPoints(sensors, actuators int) ConfigOption {
	return func(c *Config) { c.sensorPoints, c.actuatorPoints = sensors, actuators }
}

// WithSlots sets the configured module slot set.
func WithSlots(slots ...uint16) ConfigOption {
	return func(c *Config) { c.slots = slots }
}

// WithStrategyTable overrides the strategy table.
func WithStrategyTable(table []strategy.Strategy) ConfigOption {
	return func(c *Config) { c.table = table }
}

// WithHintRegistry overrides the vendor hint registry.
func WithHintRegistry(hints *strategy.HintRegistry) ConfigOption {
	return func(c *Config) { c.hints = hints }
}

// WithHealthMonitor shares a monitor across sessions. The session registers its
// own component in it.
func WithHealthMonitor(m *health.Monitor) ConfigOption {
	return func(c *Config) { c.monitor = m }
}

// WithConnectTimeout bounds one connect attempt. Values outside [1s, 30s] are clamped.
func WithConnectTimeout(d time.Duration) ConfigOption {
	return func(c *Config) { c.connectTimeout = util.Clamp(d, time.Second, 30*time.Second) }
}

// WithRetryBackoff sets the pause between failed connect attempts.
func WithRetryBackoff(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.retryBackoff = d
		}
	}
}

// WithCommandQueueSize bounds the operator command mailbox.
func WithCommandQueueSize(n int) ConfigOption {
	return func(c *Config) {
		if n > 0 {
			c.commandQueueSize = n
		}
	}
}

// WithDecodeErrorLimit sets the consecutive decode failures tolerated before reconnecting.
func WithDecodeErrorLimit(n int) ConfigOption {
	return func(c *Config) {
		if n > 0 {
			c.decodeErrorLimit = n
		}
	}
}

// WithPublisher sets the snapshot publisher for the IPC boundary.
func WithPublisher(p Publisher) ConfigOption {
	return func(c *Config) { c.publisher = p }
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) ConfigOption {
	return func(c *Config) { c.logger = l }
}

// NewConfig creates a session configuration for the named station with default
// values, then applies the provided options.
func NewConfig(stationName string, opts ...ConfigOption) (*Config, error) {
	if stationName == "" {
		return nil, errors.New("station name is empty")
	}

	cfg := &Config{
		stationName:      stationName,
		inputFrameID:     0x8001,
		outputFrameID:    0x8002,
		slots:            []uint16{0},
		table:            strategy.DefaultTable(),
		hints:            strategy.DefaultHints(),
		connectTimeout:   defaultConnectTimeout,
		retryBackoff:     defaultRetryBackoff,
		commandQueueSize: defaultCommandQueueSize,
		decodeErrorLimit: defaultDecodeErrorLimit,
		logger:           logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.sensorPoints < 0 || cfg.actuatorPoints < 0 {
		return nil, fmt.Errorf("negative point count: sensors %d, actuators %d", cfg.sensorPoints, cfg.actuatorPoints)
	}
	if cfg.inputFrameID == cfg.outputFrameID {
		return nil, fmt.Errorf("input and output frame identifiers collide: 0x%04x", cfg.inputFrameID)
	}
	if len(cfg.table) == 0 {
		return nil, errors.New("strategy table is empty")
	}
	if cfg.monitor == nil {
		cfg.monitor = health.NewMonitor(health.WithLogger(cfg.logger))
	}

	return cfg, nil
}

// StationName returns the remote station name.
func (c *Config) StationName() string { return c.stationName }

// ComponentID returns the health component identifier for this session.
func (c *Config) ComponentID() string { return "connect:" + c.stationName }
