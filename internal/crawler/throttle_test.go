package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleDeniesAfterLimit(t *testing.T) {
	ctx := context.Background()
	th := NewThrottle(2, 0)

	for i := 0; i < 2; i++ {
		granted, err := th.TryAcquire(ctx)
		require.NoError(t, err)
		assert.True(t, granted)
	}

	granted, err := th.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, 2, th.Issued())
}

func TestThrottleZeroLimitDeniesImmediately(t *testing.T) {
	granted, err := NewThrottle(0, time.Hour).TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestThrottleEnforcesMinDelay(t *testing.T) {
	ctx := context.Background()
	delay := 50 * time.Millisecond
	th := NewThrottle(3, delay)

	start := time.Now()
	for i := 0; i < 3; i++ {
		granted, err := th.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, granted)
	}

	// the first grant is immediate, the next two each wait one delay
	assert.GreaterOrEqual(t, time.Since(start), 2*delay-5*time.Millisecond)
}

func TestThrottleStopsWaitingOnCancel(t *testing.T) {
	th := NewThrottle(5, time.Hour)

	granted, err := th.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, granted)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	granted, err = th.TryAcquire(ctx)
	assert.Error(t, err)
	assert.False(t, granted)
}

func TestThrottlesAreIndependent(t *testing.T) {
	a := NewThrottle(1, 0)
	b := NewThrottle(1, 0)

	granted, _ := a.TryAcquire(context.Background())
	assert.True(t, granted)
	granted, _ = b.TryAcquire(context.Background())
	assert.True(t, granted)
}
