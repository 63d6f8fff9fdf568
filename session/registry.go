package session

import (
	"time"

	"github.com/avtomat-labs/go-fieldbus/cyclic"
)

// Snapshot is the per-cycle state the session publishes toward the web tier.
// One snapshot is one atomic publish; the shared-memory layout and locking on
// the far side are not this package's concern.
type Snapshot struct {
	StationName string
	State       ARState

	Readings   []cyclic.SensorReading
	DataStatus byte
	LastUpdate time.Time

	CycleCounter    uint16
	ConnectAttempts uint64
	StrategyLabel   string
}

// Publisher receives session snapshots at the IPC boundary. Implementations
// must treat each call as a single atomic publish. The session tolerates the
// boundary not being mapped yet: a nil Publisher is valid and ignored.
type Publisher interface {
	Publish(snapshot Snapshot)
}

// Command is one operator actuator command read from the IPC boundary.
type Command struct {
	Point  int
	Output cyclic.ActuatorOutput
}

// CommandSource supplies operator commands written at the IPC boundary.
// Implementations return the commands accumulated since the previous call.
type CommandSource interface {
	PendingCommands() []Command
}

// NopPublisher discards snapshots. Used when the web tier is absent.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(Snapshot) {}
