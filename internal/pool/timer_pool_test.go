package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerReuse(t *testing.T) {
	require := require.New(t)

	timer := GetTimer(time.Millisecond)
	<-timer.C
	PutTimer(timer)

	again := GetTimer(5 * time.Millisecond)
	select {
	case <-again.C:
	case <-time.After(time.Second):
		t.Fatal("pooled timer never fired")
	}
	PutTimer(again)

	require.NotNil(again)
}

func TestWait(t *testing.T) {
	require := require.New(t)

	t.Run("elapses", func(t *testing.T) {
		require.NoError(Wait(context.Background(), time.Millisecond))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(Wait(ctx, time.Minute), context.Canceled)
	})
}
