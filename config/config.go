// Package config holds the YAML controller configuration: the device list with
// per-device addressing and timing, health thresholds, vendor hints and the log
// level. Loading is three stages: Load parses the file, Validate checks it
// without mutating, Normalize fills defaults and is only called after Validate.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
}

type ControllerConfig struct {
	LogLevel string         `yaml:"log_level"`
	Health   HealthConfig   `yaml:"health"`
	Hints    []HintConfig   `yaml:"hints"`
	Devices  []DeviceConfig `yaml:"devices"`
}

// ---- HEALTH ----

type HealthConfig struct {
	FailureThreshold  int `yaml:"failure_threshold"`
	RecoveryTimeoutMs int `yaml:"recovery_timeout_ms"`
}

func (h HealthConfig) RecoveryTimeout() time.Duration {
	return time.Duration(h.RecoveryTimeoutMs) * time.Millisecond
}

// ---- VENDOR HINTS ----

type HintConfig struct {
	VendorID      uint16 `yaml:"vendor_id"`
	StrategyIndex int    `yaml:"strategy_index"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Station  string `yaml:"station"`
	Endpoint string `yaml:"endpoint"`
	VendorID uint16 `yaml:"vendor_id"`

	InputFrameID  uint16 `yaml:"input_frame_id"`
	OutputFrameID uint16 `yaml:"output_frame_id"`

	SensorPoints   int      `yaml:"sensor_points"`
	ActuatorPoints int      `yaml:"actuator_points"`
	Slots          []uint16 `yaml:"slots"`

	// TimingProfile pins the strategy table to one timing preset. Empty means
	// the full table, all presets included.
	TimingProfile string `yaml:"timing_profile"`

	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
	RetryBackoffMs   int `yaml:"retry_backoff_ms"`
	DecodeErrorLimit int `yaml:"decode_error_limit"`
}

func (d DeviceConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutMs) * time.Millisecond
}

func (d DeviceConfig) RetryBackoff() time.Duration {
	return time.Duration(d.RetryBackoffMs) * time.Millisecond
}

// Load reads and parses the configuration file. The result is not yet
// validated or normalized.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse parses raw YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
