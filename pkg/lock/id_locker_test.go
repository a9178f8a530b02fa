package lock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryWithLockSkipsWhenHeld(t *testing.T) {
	l := NewIdLocker()
	l.AcquireLock(1)

	ran, err := l.TryWithLock(1, func() error { return nil })
	require.NoError(t, err)
	require.False(t, ran)

	ran, err = l.TryWithLock(2, func() error { return errors.New("boom") })
	require.True(t, ran)
	require.EqualError(t, err, "boom")

	l.ReleaseLock(1)

	ran, err = l.TryWithLock(1, func() error { return nil })
	require.NoError(t, err)
	require.True(t, ran)
}

func TestWithLockSerializesPerID(t *testing.T) {
	l := NewIdLocker()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock(7, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
}

func TestReleasedIDsAreForgotten(t *testing.T) {
	l := NewIdLocker()

	require.NoError(t, l.WithLock(3, func() error {
		require.Equal(t, 1, l.Len())
		ran, err := l.TryWithLock(3, func() error { return nil })
		require.NoError(t, err)
		require.False(t, ran)
		require.Equal(t, 1, l.Len())
		return nil
	}))

	require.Equal(t, 0, l.Len())

	// Releasing an id nobody holds is logged and ignored.
	l.ReleaseLock(99)
	require.Equal(t, 0, l.Len())
}
