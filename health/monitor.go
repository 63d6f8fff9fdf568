package health

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/avtomat-labs/go-fieldbus/logger"
)

// Default breaker parameters, overridable per component at registration.
const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 30 * time.Second
)

// Record is the mutable health state of one monitored component. All mutation
// goes through its owning Monitor; callers only ever see copies.
type Record struct {
	mu sync.Mutex

	ComponentID string
	Level       Level
	Breaker     BreakerState

	ConsecutiveFailures int
	FailureThreshold    int
	RecoveryTimeout     time.Duration

	LastSuccess   time.Time
	LastFailure   time.Time
	LastErrorCode int
	LastError     string
}

// snapshot returns a copy of the record without the lock.
func (r *Record) snapshot() Record {
	return Record{
		ComponentID:         r.ComponentID,
		Level:               r.Level,
		Breaker:             r.Breaker,
		ConsecutiveFailures: r.ConsecutiveFailures,
		FailureThreshold:    r.FailureThreshold,
		RecoveryTimeout:     r.RecoveryTimeout,
		LastSuccess:         r.LastSuccess,
		LastFailure:         r.LastFailure,
		LastErrorCode:       r.LastErrorCode,
		LastError:           r.LastError,
	}
}

// Monitor owns the component records. The record set is read far more often
// than written; lookups never block, and each state transition holds only the
// record's own lock for the duration of the field updates.
type Monitor struct {
	records *xsync.MapOf[string, *Record]
	logger  logger.Logger
	now     func() time.Time
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithLogger sets the logger for health transitions.
func WithLogger(l logger.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = l }
}

// WithClock overrides the time source. Tests use it to step through the
// recovery timeout without sleeping.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor creates an empty monitor.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		records: xsync.NewMapOf[string, *Record](),
		logger:  logger.GetLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ComponentOption customizes one component registration.
type ComponentOption func(*Record)

// WithFailureThreshold sets the consecutive-failure count that opens the breaker.
func WithFailureThreshold(n int) ComponentOption {
	return func(r *Record) {
		if n > 0 {
			r.FailureThreshold = n
		}
	}
}

// WithRecoveryTimeout sets how long the breaker stays open before granting a probe.
func WithRecoveryTimeout(d time.Duration) ComponentOption {
	return func(r *Record) {
		if d > 0 {
			r.RecoveryTimeout = d
		}
	}
}

// Register creates the record for a component. Called once per component at
// process start; registering an existing component returns the existing record
// unchanged.
func (m *Monitor) Register(componentID string, opts ...ComponentOption) {
	rec := &Record{
		ComponentID:      componentID,
		Level:            LevelUnknown,
		Breaker:          BreakerClosed,
		FailureThreshold: DefaultFailureThreshold,
		RecoveryTimeout:  DefaultRecoveryTimeout,
	}
	for _, opt := range opts {
		opt(rec)
	}

	if _, loaded := m.records.LoadOrStore(componentID, rec); loaded {
		m.logger.Debug("component already registered", "component", componentID)
	}
}

// ReportSuccess records a successful operation. Consecutive failures reset to
// zero; an open or half-open breaker closes fully rather than dropping to
// half-open, and the component returns to healthy.
func (m *Monitor) ReportSuccess(componentID string) {
	rec, ok := m.records.Load(componentID)
	if !ok {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	prevBreaker := rec.Breaker
	rec.ConsecutiveFailures = 0
	rec.LastSuccess = m.now()
	rec.Level = LevelHealthy
	rec.Breaker = BreakerClosed

	if prevBreaker != BreakerClosed {
		m.logger.Info("circuit breaker closed after recovery",
			"component", componentID, "prev_state", prevBreaker.String())
	}
}

// ReportFailure records a failed operation. Below the threshold the component
// degrades; crossing the threshold moves it to unhealthy and opens the breaker.
// A failed half-open probe re-opens the breaker and restarts the recovery
// timeout.
func (m *Monitor) ReportFailure(componentID string, errorCode int, message string) {
	rec, ok := m.records.Load(componentID)
	if !ok {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.ConsecutiveFailures++
	rec.LastFailure = m.now()
	rec.LastErrorCode = errorCode
	rec.LastError = message

	switch {
	case rec.Breaker == BreakerHalfOpen:
		// the probe failed
		rec.Breaker = BreakerOpen
		rec.Level = LevelUnhealthy
		m.logger.Warn("half-open probe failed, circuit breaker re-opened",
			"component", componentID, "error_code", errorCode, "error", message)

	case rec.ConsecutiveFailures >= rec.FailureThreshold:
		if rec.Breaker != BreakerOpen {
			m.logger.Warn("failure threshold crossed, circuit breaker opened",
				"component", componentID,
				"consecutive_failures", rec.ConsecutiveFailures,
				"threshold", rec.FailureThreshold,
				"error_code", errorCode, "error", message)
		}
		rec.Breaker = BreakerOpen
		rec.Level = LevelUnhealthy

	default:
		if rec.Level.IsOperational() || rec.Level == LevelUnknown {
			rec.Level = LevelDegraded
		}
	}
}

// MarkFailed moves a component to the terminal failed level. Only an explicit
// operator action or process restart brings it back.
func (m *Monitor) MarkFailed(componentID, reason string) {
	rec, ok := m.records.Load(componentID)
	if !ok {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.Level = LevelFailed
	rec.Breaker = BreakerOpen
	rec.LastError = reason
	m.logger.Error("component marked failed", "component", componentID, "reason", reason)
}

// Allow reports whether a call to the component may proceed.
//
// Closed allows. Open rejects until the recovery timeout has elapsed since the
// last failure, then grants exactly one half-open probe: the open-to-half-open
// transition happens under the record lock, so concurrent callers cannot both
// win the probe. Half-open rejects until that probe reports its outcome.
func (m *Monitor) Allow(componentID string) bool {
	rec, ok := m.records.Load(componentID)
	if !ok {
		// unmonitored components are not gated
		return true
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	switch rec.Breaker {
	case BreakerClosed:
		return true

	case BreakerHalfOpen:
		return false

	default: // BreakerOpen
		if rec.Level == LevelFailed {
			return false
		}
		if m.now().Sub(rec.LastFailure) < rec.RecoveryTimeout {
			return false
		}
		rec.Breaker = BreakerHalfOpen
		m.logger.Info("recovery timeout elapsed, granting half-open probe", "component", componentID)

		return true
	}
}

// Snapshot returns a copy of the component's record.
func (m *Monitor) Snapshot(componentID string) (Record, bool) {
	rec, ok := m.records.Load(componentID)
	if !ok {
		return Record{}, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	return rec.snapshot(), true
}

// Components returns the IDs of every registered component.
func (m *Monitor) Components() []string {
	out := make([]string, 0)
	m.records.Range(func(id string, _ *Record) bool {
		out = append(out, id)
		return true
	})

	return out
}
