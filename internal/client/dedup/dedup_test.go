package dedup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduper_ConcurrentCallsShareOneFlight(t *testing.T) {
	d := New(time.Minute)
	ctx := context.Background()

	var calls atomic.Int64
	release := make(chan struct{})

	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "result", nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]any, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.Do(ctx, "calls|p1", fn)
		}(i)
	}

	// ждем, пока первый вызов займет ключ, затем отпускаем
	require.Eventually(t, func() bool { return d.InFlight() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "operation must run exactly once")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "result", results[i])
	}
	assert.Equal(t, 0, d.InFlight())
}

func TestDeduper_ErrorDeliveredToAllWaiters(t *testing.T) {
	d := New(time.Minute)
	ctx := context.Background()

	wantErr := errors.New("backend down")
	release := make(chan struct{})

	fn := func(ctx context.Context) (any, error) {
		<-release
		return nil, wantErr
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Do(ctx, "k", fn)
		}(i)
	}

	require.Eventually(t, func() bool { return d.InFlight() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, errs[i], wantErr)
	}
}

func TestDeduper_DifferentKeysRunIndependently(t *testing.T) {
	d := New(time.Minute)
	ctx := context.Background()

	var calls atomic.Int64
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	}

	_, err := d.Do(ctx, "a", fn)
	require.NoError(t, err)
	_, err = d.Do(ctx, "b", fn)
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load())
}

func TestDeduper_StaleFlightNotJoinable(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clockNow := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	d := New(time.Second)
	d.SetNowFunc(clockNow)
	ctx := context.Background()

	var calls atomic.Int64
	stuck := make(chan struct{})
	started := make(chan struct{}, 2)

	fn := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 1 {
			<-stuck // первый вызов завис
		}
		return n, nil
	}

	go func() {
		_, _ = d.Do(ctx, "k", fn) //nolint:errcheck // исход первого полета не важен
	}()
	<-started

	// полет старше maxAge: новый вызов идет независимо
	advance(2 * time.Second)

	got, err := d.Do(ctx, "k", fn)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
	assert.Equal(t, int64(2), calls.Load(), "stuck flight must not block a fresh call")

	close(stuck)
}

func TestDeduper_WaiterCancellation(t *testing.T) {
	d := New(time.Minute)

	release := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		<-release
		return "late", nil
	}

	go func() {
		_, _ = d.Do(context.Background(), "k", fn) //nolint:errcheck // первый вызов блокируется намеренно
	}()
	require.Eventually(t, func() bool { return d.InFlight() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Do(ctx, "k", fn)
	assert.ErrorIs(t, err, context.Canceled, "canceled waiter detaches without waiting")

	close(release)
}
