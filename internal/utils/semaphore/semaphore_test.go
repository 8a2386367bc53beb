package semaphore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_AcquireRelease(t *testing.T) {
	s := New(2)

	require.NoError(t, s.Acquire(context.Background()))
	require.NoError(t, s.Acquire(context.Background()))
	assert.Len(t, s.semaCh, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	s.Release()
	assert.Len(t, s.semaCh, 1)
	require.NoError(t, s.Acquire(context.Background()))
}

func TestSemaphore_zeroCapacity(t *testing.T) {
	s := New(0)
	assert.Equal(t, 1, cap(s.semaCh))
	require.NoError(t, s.Acquire(context.Background()))
	s.Release()
	assert.Empty(t, s.semaCh)
}

func TestSemaphore_waiterWakesUp(t *testing.T) {
	s := New(1)
	require.NoError(t, s.Acquire(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- s.Acquire(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	s.Release()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
}
