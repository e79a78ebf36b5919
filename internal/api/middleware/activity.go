package middleware

import (
	"github.com/gin-gonic/gin"
)

// ActivityTracker is notified around every request.
type ActivityTracker interface {
	Begin()
	End()
}

// Activity brackets each request with Begin/End so the idle watcher never
// fires while a transfer is in flight. Install it before RequireSession so
// rejected requests still count as activity.
func Activity(t ActivityTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		t.Begin()
		defer t.End()
		c.Next()
	}
}
