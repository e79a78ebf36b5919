package idle

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultTick is how often the watcher samples the tracker.
const DefaultTick = 5 * time.Second

// Watcher decides when the server has been idle long enough to shut down.
type Watcher struct {
	tracker *Tracker
	timeout atomic.Int64 // nanoseconds
	tick    time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewWatcher creates a watcher over tracker. A non-positive tick selects
// DefaultTick.
func NewWatcher(tracker *Tracker, timeout, tick time.Duration, logger *zap.Logger) *Watcher {
	if tick <= 0 {
		tick = DefaultTick
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		tracker: tracker,
		tick:    tick,
		logger:  logger,
		now:     time.Now,
	}
	w.SetTimeout(timeout)
	return w
}

// SetTimeout changes the idle timeout; it takes effect on the next tick.
func (w *Watcher) SetTimeout(d time.Duration) {
	w.timeout.Store(int64(d))
}

func (w *Watcher) Timeout() time.Duration {
	return time.Duration(w.timeout.Load())
}

// ShouldShutdown reports whether, at now, no request is in flight and the
// last activity is at least the timeout ago.
func (w *Watcher) ShouldShutdown(now time.Time) bool {
	if w.tracker.Active() > 0 {
		return false
	}
	return now.Sub(w.tracker.LastActivity()) >= w.Timeout()
}

// Run samples the tracker every tick. It returns true when the server went
// idle and false when ctx was cancelled first.
func (w *Watcher) Run(ctx context.Context) bool {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			now := w.now()
			if !w.ShouldShutdown(now) {
				continue
			}
			w.logger.Info("idle timeout reached",
				zap.Duration("idle", now.Sub(w.tracker.LastActivity())),
				zap.Duration("timeout", w.Timeout()),
			)
			return true
		}
	}
}
