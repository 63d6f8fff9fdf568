package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avtomat-labs/go-fieldbus/pnrpc"
)

func TestDefaultTable(t *testing.T) {
	require := require.New(t)

	table := DefaultTable()
	require.Len(table, 24)

	t.Run("wire axes vary fastest, timing slowest", func(t *testing.T) {
		// first two entries differ only in UUID policy
		require.Equal(pnrpc.UUIDAsReceived, table[0].UUIDPolicy)
		require.Equal(pnrpc.UUIDFieldSwapped, table[1].UUIDPolicy)
		require.Equal(table[0].NDRMode, table[1].NDRMode)
		require.Equal(table[0].Timing, table[1].Timing)

		// timing profile changes every 8 entries
		require.Equal(ProfileResponsive, table[0].Timing.ID)
		require.Equal(ProfileResponsive, table[7].Timing.ID)
		require.Equal(ProfileAggressive, table[8].Timing.ID)
		require.Equal(ProfileRelaxed, table[16].Timing.ID)
	})

	t.Run("deterministic", func(t *testing.T) {
		again := BuildTable([]uint16{pnrpc.OpConnect}, Profiles())
		require.Equal(table, again)
	})

	t.Run("labels unique", func(t *testing.T) {
		seen := make(map[string]bool, len(table))
		for _, s := range table {
			require.False(seen[s.Label], "duplicate label %q", s.Label)
			seen[s.Label] = true
		}
	})
}

func TestBuildTableOpnumAxis(t *testing.T) {
	require := require.New(t)

	table := BuildTable([]uint16{pnrpc.OpConnect, pnrpc.OpControl}, Profiles())
	require.Len(table, 48)
	require.Equal(pnrpc.OpConnect, table[0].OpNum)
	require.Equal(pnrpc.OpControl, table[8].OpNum)
}

func TestSelectorAdvanceWraps(t *testing.T) {
	require := require.New(t)

	s := NewSelector(DefaultTable())

	for i := 0; i < s.TableSize()-1; i++ {
		s.Advance()
	}
	require.Equal(s.TableSize()-1, s.Index())
	require.Equal(uint32(0), s.Cycles())

	s.Advance()
	require.Equal(0, s.Index())
	require.Equal(uint32(1), s.Cycles())

	// a second full pass increments the cycle count by exactly one more
	for i := 0; i < s.TableSize(); i++ {
		s.Advance()
	}
	require.Equal(0, s.Index())
	require.Equal(uint32(2), s.Cycles())
}

func TestSelectorReset(t *testing.T) {
	t.Run("without success restores index 0", func(t *testing.T) {
		require := require.New(t)

		s := NewSelector(DefaultTable())
		s.Current()
		s.Advance()
		s.Advance()
		require.Equal(2, s.Index())

		s.Reset()
		require.Equal(0, s.Index())
		require.Equal(uint32(0), s.Attempts())
		require.Equal(uint32(0), s.Cycles())
	})

	t.Run("with success restores last known good", func(t *testing.T) {
		require := require.New(t)

		s := NewSelector(DefaultTable())
		for i := 0; i < 5; i++ {
			s.Advance()
		}
		s.MarkSuccess()
		for i := 0; i < 30; i++ {
			s.Advance()
		}
		require.Equal(uint32(1), s.Cycles())

		s.Reset()
		require.Equal(5, s.Index())
		require.Equal(uint32(0), s.Attempts())
		require.Equal(uint32(0), s.Cycles())

		// the success memory survives the reset
		idx, ok := s.LastGood()
		require.True(ok)
		require.Equal(5, idx)
	})
}

func TestVendorHints(t *testing.T) {
	t.Run("applies for a fresh selector", func(t *testing.T) {
		require := require.New(t)

		hints := NewHintRegistry()
		hints.Register(0x002A, 10)

		s := NewSelector(DefaultTable(), WithHintRegistry(hints))
		require.True(s.ApplyVendorHint(0x002A))
		require.Equal(10, s.Index())
	})

	t.Run("unknown vendor is a no-op", func(t *testing.T) {
		require := require.New(t)

		s := NewSelector(DefaultTable(), WithHintRegistry(NewHintRegistry()))
		require.False(s.ApplyVendorHint(0xFFFF))
		require.Equal(0, s.Index())
	})

	t.Run("out-of-range hint is ignored", func(t *testing.T) {
		require := require.New(t)

		hints := NewHintRegistry()
		hints.Register(0x0001, 99)

		s := NewSelector(DefaultTable(), WithHintRegistry(hints))
		require.False(s.ApplyVendorHint(0x0001))
		require.Equal(0, s.Index())
	})

	t.Run("never overrides recorded success", func(t *testing.T) {
		require := require.New(t)

		hints := NewHintRegistry()
		hints.Register(0x002A, 10)

		s := NewSelector(DefaultTable(), WithHintRegistry(hints))
		s.Advance()
		s.Advance()
		s.MarkSuccess()

		require.False(s.ApplyVendorHint(0x002A))
		require.Equal(2, s.Index())
	})
}

// The discovery walk for a recognized vendor: hint, a few failures, success,
// then a reconnect resumes at the proven entry.
func TestSelectorVendorScenario(t *testing.T) {
	require := require.New(t)

	hints := NewHintRegistry()
	hints.Register(0x002A, 10)

	s := NewSelector(DefaultTable(), WithHintRegistry(hints))
	require.Equal(24, s.TableSize())

	require.True(s.ApplyVendorHint(0x002A))
	require.Equal(10, s.Index())

	// three consecutive failures
	for i := 0; i < 3; i++ {
		s.Current()
		s.Advance()
	}
	require.Equal(13, s.Index())

	s.Current()
	s.MarkSuccess()

	s.Reset()
	require.Equal(13, s.Index())
	require.Equal(uint32(0), s.Attempts())
}

func TestSelectorAttemptTracking(t *testing.T) {
	require := require.New(t)

	s := NewSelector(DefaultTable())

	first, last := s.AttemptWindow()
	require.True(first.IsZero())
	require.True(last.IsZero())

	s.Current()
	s.Current()
	require.Equal(uint32(2), s.Attempts())

	first, last = s.AttemptWindow()
	require.False(first.IsZero())
	require.False(last.Before(first))
}
