package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/filedeck/internal/api/http"
	"github.com/GriffinCanCode/filedeck/internal/api/middleware"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/config"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/idle"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/filedeck/internal/providers/auth"
	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem"
	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem/drives"
)

var (
	ErrPortInUse      = errors.New("port already in use")
	ErrAlreadyRunning = errors.New("server already running")
)

// shutdownGrace bounds how long in-flight requests get when the server
// stops on its own.
const shutdownGrace = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	fs      *filesystem.Service
	tracker *idle.Tracker
	watcher *idle.Watcher
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics

	mu          sync.Mutex
	httpSrv     *http.Server
	listener    net.Listener
	cancelWatch context.CancelFunc
	watchDone   chan struct{}
	done        chan struct{}
}

// Option customizes NewServer.
type Option func(*options)

type options struct {
	logger *logging.Logger
	drives drives.Enumerator
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDrives replaces the platform drive enumerator.
func WithDrives(e drives.Enumerator) Option {
	return func(o *options) { o.drives = e }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
	}

	logger.Info("Initializing file server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Stringer("log_level", logger.Level()),
		zap.String("base_dir", cfg.Files.BaseDir),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New(logging.ServiceName, logger.Component(logging.ComponentTracing))

	enum := o.drives
	var guarded *drives.Guarded
	if enum == nil {
		guarded = drives.NewGuarded(drives.NewSystem(logger.Component(logging.ComponentDrives)), logger.Component(logging.ComponentDrives))
		guarded.OnResult = metrics.RecordDriveEnumeration
		enum = guarded
	}

	fs, err := newFileSystem(cfg, enum, logger)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	authProvider, err := auth.New(cfg.Auth.Username, cfg.Auth.PasswordHash, cfg.Auth.MaxAttempts, logger.Component(logging.ComponentAuth))
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	tracker := idle.NewTracker()
	watcher := idle.NewWatcher(tracker, cfg.Idle.Timeout, cfg.Idle.Tick, logger.Component(logging.ComponentIdle))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Logger))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.Activity(tracker))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}
	if cfg.Auth.Enabled {
		router.Use(middleware.RequireSession(authProvider))
	} else {
		logger.Warn("Authentication disabled, the API is open to anyone who can reach it")
	}
	router.Use(middleware.ErrorLogger(logger.Component(logging.ComponentHTTP)))

	deps := apihttp.Deps{
		FS:           fs,
		Auth:         authProvider,
		Metrics:      metrics,
		Tracker:      tracker,
		Logger:       logger.Component(logging.ComponentHTTP),
		SanitizeHTML: cfg.Files.SanitizeHTML,
	}
	if guarded != nil {
		deps.Drives = guarded
	}
	apihttp.NewHandlers(deps).Register(router)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.NoRoute(notFound(cfg.Server.WebUIDir))

	logger.Info("Server initialized successfully", zap.String("root", fs.Root()))

	return &Server{
		router:  router,
		fs:      fs,
		tracker: tracker,
		watcher: watcher,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// newFileSystem opens the configured base directory, falling back to the
// home directory when it is blank or missing.
func newFileSystem(cfg *config.Config, enum drives.Enumerator, logger *logging.Logger) (*filesystem.Service, error) {
	fsCfg := filesystem.Config{
		Root:          cfg.Files.BaseDir,
		ChunkSize:     cfg.Files.ChunkSize,
		Drives:        enum,
		MountPatterns: cfg.Files.MountPatterns,
		Logger:        logger.Component(logging.ComponentFilesystem),
	}

	if fsCfg.Root != "" {
		fs, err := filesystem.New(fsCfg)
		if !errors.Is(err, filesystem.ErrNotFound) {
			return fs, err
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("base directory %q unusable and no home directory: %w", cfg.Files.BaseDir, err)
	}
	logger.Warn("Base directory doesn't exist, falling back to the home directory",
		zap.String("base_dir", cfg.Files.BaseDir),
		zap.String("home", home),
	)
	fsCfg.Root = home
	return filesystem.New(fsCfg)
}

// notFound serves the web UI for non-API paths when a directory is
// configured, and a JSON 404 otherwise.
func notFound(webUIDir string) gin.HandlerFunc {
	var files http.Handler
	if webUIDir != "" {
		files = http.FileServer(gin.Dir(webUIDir, false))
	}
	return func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

// FileSystem returns the service behind the API.
func (s *Server) FileSystem() *filesystem.Service {
	return s.fs
}

// SetIdleTimeout changes the inactivity timeout of the running watcher.
func (s *Server) SetIdleTimeout(d time.Duration) {
	s.watcher.SetTimeout(d)
}

// Start binds the listener and serves in the background. The idle watcher,
// when enabled, is bound to ctx.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpSrv != nil {
		return ErrAlreadyRunning
	}

	addr := s.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w: %s", ErrPortInUse, addr)
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})
	s.httpSrv, s.listener, s.done = srv, ln, done

	s.tracker.Touch()
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	if s.config.Idle.Enabled {
		watchCtx, cancel := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		s.cancelWatch, s.watchDone = cancel, watchDone
		go s.watch(watchCtx, srv, watchDone)
	}
	return nil
}

func (s *Server) watch(ctx context.Context, srv *http.Server, done chan struct{}) {
	defer close(done)

	if !s.watcher.Run(ctx) {
		return
	}

	s.mu.Lock()
	if s.httpSrv != srv {
		s.mu.Unlock()
		return
	}
	s.httpSrv, s.listener, s.cancelWatch, s.watchDone = nil, nil, nil, nil
	s.mu.Unlock()

	s.logger.Info("Shutting down after inactivity", zap.Duration("timeout", s.watcher.Timeout()))
	s.metrics.IncIdleShutdowns()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Idle shutdown did not complete cleanly", zap.Error(err))
	}
}

// Stop cancels the watcher, waits for it, and shuts the listener down. It is
// a no-op when the server is not running.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, cancel, watchDone := s.httpSrv, s.cancelWatch, s.watchDone
	s.httpSrv, s.listener, s.cancelWatch, s.watchDone = nil, nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-watchDone
	}
	if srv == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")
	return srv.Shutdown(ctx)
}

// Restart stops and starts again, which resets the idle timer.
func (s *Server) Restart(ctx context.Context) error {
	if err := s.Stop(ctx); err != nil {
		return err
	}
	return s.Start(ctx)
}

// Running reports whether the listener is up.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpSrv != nil
}

// Addr is the bound listener address, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Done is closed when the current serve loop exits, whether by Stop or by
// idle shutdown. Before the first Start it returns nil.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Close stops the server and flushes the tracer and logger.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := s.Stop(ctx)

	s.tracer.Close()
	_ = s.logger.Sync()
	return err
}
