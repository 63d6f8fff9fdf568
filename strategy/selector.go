package strategy

import (
	"sync"
	"time"

	"github.com/avtomat-labs/go-fieldbus/logger"
)

// noSuccess marks a selector that has not recorded a working strategy yet.
const noSuccess = -1

// Selector walks a strategy table for one remote session. It owns the mutable
// cursor state; the table itself is shared and read-only.
//
// A Selector is safe for concurrent use, though a session drives it from a
// single goroutine in practice.
type Selector struct {
	mu     sync.Mutex
	table  []Strategy
	logger logger.Logger
	hints  *HintRegistry

	index    int
	attempts uint32
	cycles   uint32
	lastGood int

	firstAttempt time.Time
	lastAttempt  time.Time
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithSelectorLogger sets the logger used for cycle-boundary and hint events.
func WithSelectorLogger(l logger.Logger) SelectorOption {
	return func(s *Selector) { s.logger = l }
}

// WithHintRegistry sets the vendor hint registry consulted by ApplyVendorHint.
// Defaults to the process-wide registry.
func WithHintRegistry(r *HintRegistry) SelectorOption {
	return func(s *Selector) { s.hints = r }
}

// NewSelector creates a selector over the given table, which must be non-empty.
// Pass DefaultTable() unless the session needs a custom axis set.
func NewSelector(table []Strategy, opts ...SelectorOption) *Selector {
	s := &Selector{
		table:    table,
		lastGood: noSuccess,
		logger:   logger.GetLogger(),
		hints:    defaultHints,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Current returns the strategy the caller should attempt now and records the
// attempt. An out-of-range cursor self-heals to index 0.
func (s *Selector) Current() Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index < 0 || s.index >= len(s.table) {
		s.logger.Warn("strategy index out of range, self-healing", "index", s.index, "table_size", len(s.table))
		s.index = 0
	}

	now := time.Now()
	if s.firstAttempt.IsZero() {
		s.firstAttempt = now
	}
	s.lastAttempt = now
	s.attempts++

	return s.table[s.index]
}

// Advance moves the cursor to the next table entry. Wrapping past the end is
// not an error: transient conditions can make a previously failing combination
// succeed later, so the walk restarts from the top and the completed cycle is
// logged.
func (s *Selector) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index++
	if s.index >= len(s.table) {
		s.index = 0
		s.cycles++
		s.logger.Info("strategy table exhausted, restarting from top",
			"cycles", s.cycles, "attempts", s.attempts, "table_size", len(s.table))
	}
}

// MarkSuccess records the current entry as the last known good strategy.
// Reset returns here, and vendor hints no longer apply.
func (s *Selector) MarkSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastGood = s.index
	s.logger.Debug("strategy marked successful", "index", s.index, "label", s.table[s.index].Label)
}

// Reset restores the cursor to the last known good entry, or to index 0 if no
// success was ever recorded, and zeroes the attempt and cycle counters. The
// success memory itself survives; only a fresh selector forgets it.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastGood != noSuccess {
		s.index = s.lastGood
	} else {
		s.index = 0
	}
	s.attempts = 0
	s.cycles = 0
	s.firstAttempt = time.Time{}
	s.lastAttempt = time.Time{}
}

// ApplyVendorHint jumps the cursor to the registered fast-path entry for a
// recognized vendor. It is a no-op once any strategy has succeeded against the
// live device: empirically proven state always beats a catalog hint.
//
// It returns true if the cursor moved.
func (s *Selector) ApplyVendorHint(vendorID uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastGood != noSuccess {
		s.logger.Debug("vendor hint ignored, success already recorded",
			"vendor_id", vendorID, "last_good", s.lastGood)
		return false
	}

	index, ok := s.hints.Lookup(vendorID)
	if !ok {
		return false
	}
	if index < 0 || index >= len(s.table) {
		s.logger.Warn("vendor hint out of table range, ignored", "vendor_id", vendorID, "index", index)
		return false
	}

	s.index = index
	s.logger.Info("vendor hint applied", "vendor_id", vendorID, "index", index, "label", s.table[index].Label)

	return true
}

// Index returns the current cursor position.
func (s *Selector) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index
}

// Attempts returns the number of attempts since the last reset.
func (s *Selector) Attempts() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempts
}

// Cycles returns the number of completed full table passes since the last reset.
func (s *Selector) Cycles() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cycles
}

// LastGood returns the index of the last strategy that succeeded and whether
// one was recorded at all.
func (s *Selector) LastGood() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastGood == noSuccess {
		return 0, false
	}

	return s.lastGood, true
}

// TableSize returns the number of entries in the selector's table.
func (s *Selector) TableSize() int {
	return len(s.table)
}

// AttemptWindow returns the timestamps of the first and most recent attempt
// since the last reset.
func (s *Selector) AttemptWindow() (first, last time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.firstAttempt, s.lastAttempt
}
