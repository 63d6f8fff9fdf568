package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCloneSlice(t *testing.T) {
	require := require.New(t)

	src := []byte{1, 2, 3}
	clone := CloneSlice(src, 0)
	require.Equal(src, clone)

	clone[0] = 9
	require.Equal(byte(1), src[0])

	require.Len(CloneSlice(src, 5), 5)
	require.Equal([]byte{1, 2}, CloneSlice(src, 2))
}

func TestClamp(t *testing.T) {
	require := require.New(t)

	require.Equal(5, Clamp(5, 0, 10))
	require.Equal(0, Clamp(-3, 0, 10))
	require.Equal(10, Clamp(42, 0, 10))
	require.Equal(time.Second, Clamp(time.Millisecond, time.Second, time.Minute))
}
