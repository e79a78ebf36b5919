package idle

import (
	"sync/atomic"
	"time"
)

// Tracker records request activity. It is safe for concurrent use and is
// written by the HTTP middleware and read by the Watcher.
type Tracker struct {
	active atomic.Int64
	last   atomic.Int64 // unix nanoseconds
	now    func() time.Time
}

// NewTracker returns a tracker whose last activity is now.
func NewTracker() *Tracker {
	return newTrackerWithClock(time.Now)
}

func newTrackerWithClock(now func() time.Time) *Tracker {
	t := &Tracker{now: now}
	t.Touch()
	return t
}

// Begin marks the start of a request.
func (t *Tracker) Begin() {
	t.active.Add(1)
	t.Touch()
}

// End marks the end of a request started with Begin.
func (t *Tracker) End() {
	t.active.Add(-1)
	t.Touch()
}

// Touch resets the last activity time without changing the active count.
func (t *Tracker) Touch() {
	t.last.Store(t.now().UnixNano())
}

// Active returns the number of in-flight requests.
func (t *Tracker) Active() int64 {
	return t.active.Load()
}

// LastActivity returns the time of the most recent Begin, End or Touch.
func (t *Tracker) LastActivity() time.Time {
	return time.Unix(0, t.last.Load())
}

// Snapshot is a point-in-time view of the tracker.
type Snapshot struct {
	Active       int64     `json:"active"`
	LastActivity time.Time `json:"lastActivity"`
}

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{Active: t.Active(), LastActivity: t.LastActivity()}
}
