package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock steps time manually in tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMonitor(threshold int, timeout time.Duration) (*Monitor, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	m := NewMonitor(WithClock(clock.now))
	m.Register("connect-engine",
		WithFailureThreshold(threshold),
		WithRecoveryTimeout(timeout),
	)

	return m, clock
}

func TestHealthLevels(t *testing.T) {
	require := require.New(t)

	m, _ := newTestMonitor(3, time.Minute)

	rec, ok := m.Snapshot("connect-engine")
	require.True(ok)
	require.Equal(LevelUnknown, rec.Level)
	require.Equal(BreakerClosed, rec.Breaker)

	m.ReportSuccess("connect-engine")
	rec, _ = m.Snapshot("connect-engine")
	require.Equal(LevelHealthy, rec.Level)

	m.ReportFailure("connect-engine", 110, "no response")
	rec, _ = m.Snapshot("connect-engine")
	require.Equal(LevelDegraded, rec.Level)
	require.Equal(BreakerClosed, rec.Breaker)
	require.Equal(1, rec.ConsecutiveFailures)
	require.Equal(110, rec.LastErrorCode)
	require.Equal("no response", rec.LastError)

	m.ReportSuccess("connect-engine")
	rec, _ = m.Snapshot("connect-engine")
	require.Equal(LevelHealthy, rec.Level)
	require.Equal(0, rec.ConsecutiveFailures)
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	require := require.New(t)

	m, clock := newTestMonitor(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(m.Allow("connect-engine"))
		m.ReportFailure("connect-engine", 110, "no response")
	}

	rec, _ := m.Snapshot("connect-engine")
	require.Equal(LevelUnhealthy, rec.Level)
	require.Equal(BreakerOpen, rec.Breaker)

	// rejected while open
	require.False(m.Allow("connect-engine"))
	clock.advance(59 * time.Second)
	require.False(m.Allow("connect-engine"))

	// exactly one probe after the recovery timeout
	clock.advance(2 * time.Second)
	require.True(m.Allow("connect-engine"))
	require.False(m.Allow("connect-engine"), "second caller must not get a probe")

	rec, _ = m.Snapshot("connect-engine")
	require.Equal(BreakerHalfOpen, rec.Breaker)
}

func TestHalfOpenProbeOutcome(t *testing.T) {
	t.Run("probe success closes fully", func(t *testing.T) {
		require := require.New(t)

		m, clock := newTestMonitor(2, time.Minute)
		m.ReportFailure("connect-engine", 1, "x")
		m.ReportFailure("connect-engine", 1, "x")
		clock.advance(2 * time.Minute)
		require.True(m.Allow("connect-engine"))

		m.ReportSuccess("connect-engine")
		rec, _ := m.Snapshot("connect-engine")
		require.Equal(BreakerClosed, rec.Breaker, "success closes, never half-open")
		require.Equal(LevelHealthy, rec.Level)
		require.True(m.Allow("connect-engine"))
	})

	t.Run("probe failure re-opens and restarts the timeout", func(t *testing.T) {
		require := require.New(t)

		m, clock := newTestMonitor(2, time.Minute)
		m.ReportFailure("connect-engine", 1, "x")
		m.ReportFailure("connect-engine", 1, "x")
		clock.advance(2 * time.Minute)
		require.True(m.Allow("connect-engine"))

		m.ReportFailure("connect-engine", 2, "probe failed")
		rec, _ := m.Snapshot("connect-engine")
		require.Equal(BreakerOpen, rec.Breaker)

		require.False(m.Allow("connect-engine"))
		clock.advance(61 * time.Second)
		require.True(m.Allow("connect-engine"))
	})
}

func TestMarkFailed(t *testing.T) {
	require := require.New(t)

	m, clock := newTestMonitor(3, time.Second)
	m.MarkFailed("connect-engine", "device decommissioned")

	rec, _ := m.Snapshot("connect-engine")
	require.Equal(LevelFailed, rec.Level)

	clock.advance(time.Hour)
	require.False(m.Allow("connect-engine"), "failed components never recover on their own")
}

func TestUnmonitoredComponent(t *testing.T) {
	require := require.New(t)

	m := NewMonitor()
	require.True(m.Allow("nonexistent"))
	m.ReportSuccess("nonexistent")
	m.ReportFailure("nonexistent", 1, "x")

	_, ok := m.Snapshot("nonexistent")
	require.False(ok)
}

func TestRegisterIdempotent(t *testing.T) {
	require := require.New(t)

	m, _ := newTestMonitor(3, time.Minute)
	m.ReportFailure("connect-engine", 1, "x")

	// re-registering must not clear the record
	m.Register("connect-engine")
	rec, _ := m.Snapshot("connect-engine")
	require.Equal(1, rec.ConsecutiveFailures)

	require.Len(m.Components(), 1)
}
