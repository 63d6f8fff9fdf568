package health

// Level represents a component's health classification.
type Level uint32

const (
	// LevelUnknown is the state of a freshly registered component.
	LevelUnknown Level = iota
	// LevelHealthy indicates normal operation.
	LevelHealthy
	// LevelDegraded indicates failures below the breaker threshold.
	LevelDegraded
	// LevelUnhealthy indicates the failure threshold was crossed.
	LevelUnhealthy
	// LevelFailed indicates a terminal failure marked explicitly; the
	// component will not recover without operator intervention.
	LevelFailed
)

// String returns string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelHealthy:
		return "healthy"
	case LevelDegraded:
		return "degraded"
	case LevelUnhealthy:
		return "unhealthy"
	case LevelFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsOperational reports whether the component can serve at all.
func (l Level) IsOperational() bool {
	return l == LevelHealthy || l == LevelDegraded
}

// BreakerState represents the circuit breaker position for one component.
type BreakerState uint32

const (
	// BreakerClosed allows calls.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls until the recovery timeout elapses.
	BreakerOpen
	// BreakerHalfOpen has granted a single probe call whose outcome decides
	// whether the breaker closes or re-opens.
	BreakerHalfOpen
)

// String returns string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}
