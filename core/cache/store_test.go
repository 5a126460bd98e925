package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	return NewStore(WithClock(clock.Now)), clock
}

func countingFetch(value string, calls *int) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*calls++
		return value, nil
	}
}

func TestFetchReturnsCachedWhileFresh(t *testing.T) {
	s, clock := newTestStore()
	calls := 0
	fn := countingFetch("v1", &calls)

	res := Fetch(context.Background(), s, KeyStations, time.Minute, fn)
	require.NoError(t, res.Err)
	require.Equal(t, "v1", res.Data)

	clock.Advance(30 * time.Second)
	res = Fetch(context.Background(), s, KeyStations, time.Minute, fn)
	require.NoError(t, res.Err)
	require.Equal(t, "v1", res.Data)
	require.Equal(t, 1, calls, "fresh entry must not refetch")
}

func TestFetchRefetchesAfterStaleWindow(t *testing.T) {
	s, clock := newTestStore()
	calls := 0

	Fetch(context.Background(), s, KeyStations, time.Minute, countingFetch("v1", &calls))
	clock.Advance(2 * time.Minute)
	res := Fetch(context.Background(), s, KeyStations, time.Minute, countingFetch("v2", &calls))

	require.Equal(t, "v2", res.Data)
	require.Equal(t, 2, calls)
}

func TestFetchSharesInflightRequest(t *testing.T) {
	s, _ := newTestStore()
	release := make(chan struct{})
	calls := 0
	slow := func(context.Context) (string, error) {
		calls++
		<-release
		return "shared", nil
	}

	first := make(chan Result[string])
	go func() { first <- Fetch(context.Background(), s, KeySessions, time.Minute, slow) }()

	require.Eventually(t, func() bool {
		return Peek[string](s, KeySessions).IsLoading
	}, time.Second, time.Millisecond)

	second := make(chan Result[string])
	go func() {
		second <- Fetch(context.Background(), s, KeySessions, time.Minute, func(context.Context) (string, error) {
			t.Error("second fetch must attach, not refetch")
			return "", nil
		})
	}()

	// Give the second caller time to attach before releasing.
	time.Sleep(10 * time.Millisecond)
	close(release)

	r1 := <-first
	r2 := <-second
	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)
	require.Equal(t, "shared", r1.Data)
	require.Equal(t, "shared", r2.Data)
	require.Equal(t, 1, calls)
}

func TestInvalidateSupersedesInflightResponse(t *testing.T) {
	s, _ := newTestStore()
	release := make(chan struct{})
	slow := func(context.Context) (string, error) {
		<-release
		return "stale response", nil
	}

	first := make(chan Result[string])
	go func() { first <- Fetch(context.Background(), s, KeyStations, time.Minute, slow) }()
	require.Eventually(t, func() bool {
		return Peek[string](s, KeyStations).IsLoading
	}, time.Second, time.Millisecond)

	// The mutation lands while the old fetch is still in flight.
	s.Invalidate(KeyStations)

	res := Fetch(context.Background(), s, KeyStations, time.Minute, func(context.Context) (string, error) {
		return "fresh response", nil
	})
	require.Equal(t, "fresh response", res.Data)

	// The superseded response resolves late and must not clobber the entry.
	close(release)
	<-first
	got := Peek[string](s, KeyStations)
	require.Equal(t, "fresh response", got.Data)
	require.NoError(t, got.Err)
}

func TestFetchErrorStoredOnEntry(t *testing.T) {
	s, _ := newTestStore()
	boom := errors.New("backend down")

	res := Fetch(context.Background(), s, KeySpotPrice, time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, res.Err, boom)

	peek := Peek[string](s, KeySpotPrice)
	require.ErrorIs(t, peek.Err, boom)
	require.False(t, peek.IsLoading)
}

func TestFetchErrorDoesNotEraseCachedData(t *testing.T) {
	s, clock := newTestStore()
	calls := 0
	Fetch(context.Background(), s, KeyStations, time.Minute, countingFetch("v1", &calls))

	clock.Advance(2 * time.Minute)
	res := Fetch(context.Background(), s, KeyStations, time.Minute, func(context.Context) (string, error) {
		return "", errors.New("flaky")
	})
	require.Error(t, res.Err)

	// The stale value is still present for the next successful fetch cycle.
	peek := Peek[string](s, KeyStations)
	require.Equal(t, "v1", peek.Data)
}

func TestWaiterContextCancellationIsSilent(t *testing.T) {
	s, _ := newTestStore()
	release := make(chan struct{})
	first := make(chan Result[string])
	go func() {
		first <- Fetch(context.Background(), s, KeySessions, time.Minute, func(context.Context) (string, error) {
			<-release
			return "late", nil
		})
	}()
	require.Eventually(t, func() bool {
		return Peek[string](s, KeySessions).IsLoading
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Fetch(ctx, s, KeySessions, time.Minute, func(context.Context) (string, error) {
		return "", errors.New("must not run")
	})
	require.ErrorIs(t, res.Err, context.Canceled)
	require.True(t, res.IsLoading)

	// The abandoned response still settles the cache for everyone else.
	close(release)
	r := <-first
	require.Equal(t, "late", r.Data)
	require.Equal(t, "late", Peek[string](s, KeySessions).Data)
}

func TestMutateInvalidates(t *testing.T) {
	s, _ := newTestStore()
	calls := 0
	Fetch(context.Background(), s, KeySessions, time.Hour, countingFetch("before", &calls))

	onSuccess := false
	_, err := Mutate(context.Background(), s, func(context.Context) (string, error) {
		return "created", nil
	}, MutateOpts{Invalidates: KeySessions, OnSuccess: func() { onSuccess = true }})
	require.NoError(t, err)
	require.True(t, onSuccess)

	res := Fetch(context.Background(), s, KeySessions, time.Hour, countingFetch("after", &calls))
	require.Equal(t, "after", res.Data)
	require.Equal(t, 2, calls, "invalidated key must refetch")
}

func TestMutateFailureLeavesCacheUntouched(t *testing.T) {
	s, _ := newTestStore()
	calls := 0
	Fetch(context.Background(), s, KeySessions, time.Hour, countingFetch("cached", &calls))

	boom := errors.New("create failed")
	var seen error
	_, err := Mutate(context.Background(), s, func(context.Context) (string, error) {
		return "", boom
	}, MutateOpts{Invalidates: KeySessions, OnError: func(e error) { seen = e }})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, seen, boom)

	res := Fetch(context.Background(), s, KeySessions, time.Hour, countingFetch("never", &calls))
	require.Equal(t, "cached", res.Data)
	require.Equal(t, 1, calls)
}

func TestStoreRecordsCacheEvents(t *testing.T) {
	var events []coremetrics.CacheEvent
	sink := sinkFunc(func(ev coremetrics.CacheEvent) error {
		events = append(events, ev)
		return nil
	})
	clock := &fakeClock{now: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	s := NewStore(WithClock(clock.Now), WithSink(sink))

	calls := 0
	Fetch(context.Background(), s, KeyStations, time.Minute, countingFetch("v", &calls))
	Fetch(context.Background(), s, KeyStations, time.Minute, countingFetch("v", &calls))

	require.Len(t, events, 2)
	require.Equal(t, coremetrics.CacheMiss, events[0].Outcome)
	require.Equal(t, coremetrics.CacheHit, events[1].Outcome)
	require.Equal(t, string(KeyStations), events[0].Key)
}

type sinkFunc func(coremetrics.CacheEvent) error

func (f sinkFunc) RecordCacheEvent(ev coremetrics.CacheEvent) error { return f(ev) }
