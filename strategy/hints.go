package strategy

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// HintRegistry maps device vendor identifiers to a strategy-table starting
// index. Devices from the same vendor line overwhelmingly agree on one
// wire-format combination; starting there collapses the expected discovery
// time from "up to a full table pass" to "usually one attempt".
//
// The registry is shared across sessions and read far more often than written.
type HintRegistry struct {
	hints *xsync.MapOf[uint16, int]
}

// NewHintRegistry creates an empty registry.
func NewHintRegistry() *HintRegistry {
	return &HintRegistry{hints: xsync.NewMapOf[uint16, int]()}
}

// Register records the fast-path table index for a vendor identifier,
// replacing any previous hint for that vendor.
func (r *HintRegistry) Register(vendorID uint16, index int) {
	r.hints.Store(vendorID, index)
}

// Lookup returns the registered index for a vendor, if any.
func (r *HintRegistry) Lookup(vendorID uint16) (int, bool) {
	return r.hints.Load(vendorID)
}

// defaultHints is the process-wide registry used by selectors unless they are
// given their own.
var defaultHints = NewHintRegistry()

// RegisterHint records a vendor fast path in the process-wide registry.
func RegisterHint(vendorID uint16, index int) {
	defaultHints.Register(vendorID, index)
}

// DefaultHints returns the process-wide registry.
func DefaultHints() *HintRegistry {
	return defaultHints
}
