package cyclic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceTracker(t *testing.T) {
	t.Run("first counter initializes", func(t *testing.T) {
		require := require.New(t)

		var tr SequenceTracker
		require.Equal(SeqInitial, tr.Check(100))

		last, ok := tr.Last()
		require.True(ok)
		require.Equal(uint16(100), last)
	})

	t.Run("forward window accepted", func(t *testing.T) {
		require := require.New(t)

		var tr SequenceTracker
		tr.Check(100)

		require.Equal(SeqAccepted, tr.Check(101))
		last, _ := tr.Last()
		require.Equal(uint16(101), last)

		tr.Reset()
		tr.Check(100)
		require.Equal(SeqAccepted, tr.Check(199))
		last, _ = tr.Last()
		require.Equal(uint16(199), last)
	})

	t.Run("exact duplicate is a replay", func(t *testing.T) {
		require := require.New(t)

		var tr SequenceTracker
		tr.Check(100)

		require.Equal(SeqDuplicate, tr.Check(100))
		// a rejected counter does not disturb the tracker
		last, _ := tr.Last()
		require.Equal(uint16(100), last)
	})

	t.Run("out-of-window counter tolerated as gap", func(t *testing.T) {
		require := require.New(t)

		var tr SequenceTracker
		tr.Check(100)

		require.Equal(SeqGap, tr.Check(500))
		last, _ := tr.Last()
		require.Equal(uint16(500), last)
	})

	t.Run("window wraps at 16 bits", func(t *testing.T) {
		require := require.New(t)

		var tr SequenceTracker
		tr.Check(65530)

		require.Equal(SeqAccepted, tr.Check(4), "65530+10 wraps to 4")
		last, _ := tr.Last()
		require.Equal(uint16(4), last)
	})

	t.Run("reset clears initialization", func(t *testing.T) {
		require := require.New(t)

		var tr SequenceTracker
		tr.Check(42)
		tr.Reset()

		_, ok := tr.Last()
		require.False(ok)
		require.Equal(SeqInitial, tr.Check(42))
	})
}
