package idle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTrackerCounts(t *testing.T) {
	clock := newClock()
	tracker := newTrackerWithClock(clock.Now)

	tracker.Begin()
	tracker.Begin()
	assert.Equal(t, int64(2), tracker.Active())

	clock.Advance(time.Minute)
	tracker.End()
	assert.Equal(t, int64(1), tracker.Active())
	assert.True(t, tracker.LastActivity().Equal(clock.Now()))

	snap := tracker.Snapshot()
	assert.Equal(t, int64(1), snap.Active)
}

func TestTrackerConcurrent(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Begin()
			tracker.End()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), tracker.Active())
}

func TestShouldShutdown(t *testing.T) {
	tests := []struct {
		name     string
		inFlight int
		elapsed  time.Duration
		want     bool
	}{
		{"fresh activity", 0, time.Second, false},
		{"exactly at timeout", 0, 10 * time.Second, true},
		{"past timeout", 0, time.Hour, true},
		{"in-flight request past timeout", 1, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock()
			tracker := newTrackerWithClock(clock.Now)
			for i := 0; i < tt.inFlight; i++ {
				tracker.Begin()
			}

			w := NewWatcher(tracker, 10*time.Second, time.Second, zap.NewNop())
			assert.Equal(t, tt.want, w.ShouldShutdown(clock.Now().Add(tt.elapsed)))
		})
	}
}

func TestSetTimeout(t *testing.T) {
	clock := newClock()
	tracker := newTrackerWithClock(clock.Now)
	w := NewWatcher(tracker, time.Hour, time.Second, nil)

	at := clock.Now().Add(time.Minute)
	assert.False(t, w.ShouldShutdown(at))

	w.SetTimeout(30 * time.Second)
	assert.Equal(t, 30*time.Second, w.Timeout())
	assert.True(t, w.ShouldShutdown(at))
}

func TestRunReturnsTrueWhenIdle(t *testing.T) {
	tracker := NewTracker()
	w := NewWatcher(tracker, 20*time.Millisecond, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	require.True(t, w.Run(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRunWaitsForInFlightRequest(t *testing.T) {
	tracker := NewTracker()
	w := NewWatcher(tracker, 20*time.Millisecond, 5*time.Millisecond, zap.NewNop())

	tracker.Begin()

	result := make(chan bool, 1)
	go func() { result <- w.Run(context.Background()) }()

	// Well past the timeout the request is still running.
	select {
	case <-result:
		t.Fatal("watcher fired while a request was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	tracker.End()

	select {
	case idle := <-result:
		assert.True(t, idle)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire after the request finished")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tracker := NewTracker()
	w := NewWatcher(tracker, time.Hour, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan bool, 1)
	go func() { result <- w.Run(ctx) }()

	cancel()

	select {
	case idle := <-result:
		assert.False(t, idle)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
