package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/avtomat-labs/go-fieldbus/logger"
)

// ARState represents the stages of an application relationship.
type ARState uint32

const (
	// ARNotConnected indicates no session with the device.
	ARNotConnected ARState = iota
	// ARConnecting indicates the strategy walk is in progress.
	ARConnecting
	// ARRunning indicates the session is established and exchanging cyclic data.
	ARRunning
)

// IsNotConnected returns if the current state is not connected.
func (s ARState) IsNotConnected() bool { return s == ARNotConnected }

// IsConnecting returns if the current state is connecting.
func (s ARState) IsConnecting() bool { return s == ARConnecting }

// IsRunning returns if the current state is running.
func (s ARState) IsRunning() bool { return s == ARRunning }

// String returns string representation of the current state.
func (s ARState) String() string {
	switch s {
	case ARConnecting:
		return "connecting"
	case ARRunning:
		return "running"
	default:
		return "not-connected"
	}
}

// ARStateChangeHandler is invoked on AR state changes, in blocking mode.
// Take care with long-running implementations.
type ARStateChangeHandler func(prevState, newState ARState)

// ARStateMgr manages the AR state of one session.
//
// It provides methods for managing state transitions and notifying listeners of
// state changes. The state transitions are thread safe in concurrent environments.
type ARStateMgr struct {
	mu       sync.Mutex
	cond     *sync.Cond
	state    atomic.Uint32
	logger   logger.Logger
	handlers []ARStateChangeHandler
}

// NewARStateMgr creates a state manager initialized to ARNotConnected.
func NewARStateMgr(log logger.Logger, handlers ...ARStateChangeHandler) *ARStateMgr {
	if log == nil {
		log = logger.GetLogger()
	}
	mgr := &ARStateMgr{
		logger:   log,
		handlers: handlers,
	}
	mgr.state.Store(uint32(ARNotConnected))
	mgr.cond = sync.NewCond(&mgr.mu)

	return mgr
}

// State returns the current AR state.
func (m *ARStateMgr) State() ARState {
	return ARState(m.state.Load())
}

// AddHandler adds one or more handlers to be invoked on state changes.
func (m *ARStateMgr) AddHandler(handlers ...ARStateChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handlers...)
}

// WaitState waits for the AR to reach the given state or for the context to end.
func (m *ARStateMgr) WaitState(ctx context.Context, state ARState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State() == state {
		return nil
	}

	stopFunc := context.AfterFunc(ctx, func() {
		m.cond.Broadcast()
	})
	defer stopFunc()

	for m.State() != state {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			m.cond.Wait()
		}
	}

	return nil
}

// ToNotConnected transitions to ARNotConnected. Allowed from any state; it
// represents a disconnection or an abandoned connect.
func (m *ARStateMgr) ToNotConnected() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.State()
	if cur.IsNotConnected() {
		return
	}

	m.setState(ARNotConnected)
	m.invokeHandlers(cur, ARNotConnected)
}

// ToConnecting transitions to ARConnecting. Only allowed from ARNotConnected.
func (m *ARStateMgr) ToConnecting() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.State()
	if cur.IsConnecting() {
		return nil
	}
	if !cur.IsNotConnected() {
		return ErrInvalidTransition
	}

	m.invokeHandlers(cur, ARConnecting)
	m.setState(ARConnecting)

	return nil
}

// ToRunning transitions to ARRunning. Only allowed from ARConnecting: a session
// cannot start exchanging cyclic data without an accepted connect.
func (m *ARStateMgr) ToRunning() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.State()
	if cur.IsRunning() {
		return nil
	}
	if !cur.IsConnecting() {
		return ErrInvalidTransition
	}

	m.invokeHandlers(cur, ARRunning)
	m.setState(ARRunning)

	return nil
}

// setState atomically sets the state and wakes any WaitState callers.
func (m *ARStateMgr) setState(newState ARState) {
	m.state.Store(uint32(newState))
	m.cond.Broadcast()
}

func (m *ARStateMgr) invokeHandlers(prevState, newState ARState) {
	m.logger.Debug("ar state change", "prev_state", prevState.String(), "new_state", newState.String())
	for _, handler := range m.handlers {
		if handler != nil {
			handler(prevState, newState)
		}
	}
}
