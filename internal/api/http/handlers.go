package http

import (
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filedeck/internal/infrastructure/idle"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/filedeck/internal/providers/auth"
	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem"
	"github.com/gin-gonic/gin"
)

// DriveState exposes the health of the drive enumerator.
type DriveState interface {
	State() resilience.State
}

// Deps are the collaborators of the handler set. Drives is optional.
type Deps struct {
	FS           *filesystem.Service
	Auth         *auth.Provider
	Metrics      *monitoring.Metrics
	Tracker      *idle.Tracker
	Drives       DriveState
	Logger       *zap.Logger
	SanitizeHTML bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	fs       *filesystem.Service
	auth     *auth.Provider
	metrics  *monitoring.Metrics
	tracker  *idle.Tracker
	drives   DriveState
	logger   *zap.Logger
	sanitize *bluemonday.Policy
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		fs:      d.FS,
		auth:    d.Auth,
		metrics: d.Metrics,
		tracker: d.Tracker,
		drives:  d.Drives,
		logger:  logger,
	}
	if d.SanitizeHTML {
		h.sanitize = bluemonday.UGCPolicy()
	}
	return h
}

// Register mounts the API routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/login", h.Login)
	api.GET("/logoff", h.Logoff)
	api.GET("/login/is-logged", h.IsLogged)
	api.GET("/ping", h.Ping)

	api.POST("/dir/list", h.ListDir)
	api.POST("/dir/create", h.CreateDir)
	api.POST("/dir/delete", h.Delete)
	api.POST("/dir/paste", h.Paste)
	api.POST("/dir/upload", h.Upload)
	api.POST("/dir/download", h.Download)
	api.POST("/file/rename", h.Rename)
	api.GET("/file/view", h.View)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":   "healthy",
		"activity": h.tracker.Snapshot(),
		"metrics":  h.metrics.Snapshot(),
	}
	if h.drives != nil {
		resp["drives"] = gin.H{"breaker": h.drives.State().String()}
	}
	c.JSON(http.StatusOK, resp)
}

// Ping answers a logged-in client.
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
