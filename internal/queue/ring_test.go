package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingFIFO(t *testing.T) {
	require := require.New(t)

	r := NewRing[int](4)
	require.True(r.IsEmpty())

	for i := 1; i <= 3; i++ {
		require.False(r.Push(i))
	}
	require.Equal(3, r.Len())

	v, ok := r.Pop()
	require.True(ok)
	require.Equal(1, v)

	v, ok = r.Pop()
	require.True(ok)
	require.Equal(2, v)

	require.False(r.Push(4))
	require.Equal([]int{3, 4}, r.Drain())
	require.True(r.IsEmpty())

	_, ok = r.Pop()
	require.False(ok)
}

func TestRingDropsOldestWhenFull(t *testing.T) {
	require := require.New(t)

	r := NewRing[string](2)
	require.False(r.Push("a"))
	require.False(r.Push("b"))
	require.True(r.Push("c"), "push on a full ring drops the oldest")

	require.Equal([]string{"b", "c"}, r.Drain())
}

func TestRingMinimumCapacity(t *testing.T) {
	require := require.New(t)

	r := NewRing[int](0)
	r.Push(1)
	r.Push(2)

	v, ok := r.Pop()
	require.True(ok)
	require.Equal(2, v)
}
