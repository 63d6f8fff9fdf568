package session

import "errors"

var (
	// ErrConfigNil indicates that a nil Config was provided.
	ErrConfigNil = errors.New("session config is nil")

	// ErrTransportNil indicates that no transport was configured.
	ErrTransportNil = errors.New("session transport is nil")

	// ErrInvalidTransition is returned when an attempt is made to transition the
	// AR state to an invalid state.
	ErrInvalidTransition = errors.New("invalid ar state transition")

	// ErrNotRunning indicates a cyclic operation on a session that is not in the
	// running state.
	ErrNotRunning = errors.New("session is not running")

	// ErrCircuitOpen indicates the health monitor's breaker rejected the
	// connection attempt. Not a device error; retry after the recovery timeout.
	ErrCircuitOpen = errors.New("circuit breaker open, connect attempt rejected")

	// ErrConnectStatus indicates the device answered the connect with a non-zero
	// AR status word.
	ErrConnectStatus = errors.New("connect answered with error status")
)
