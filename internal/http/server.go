package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"batchdesk/internal/auth"
	"batchdesk/internal/cache"
	"batchdesk/internal/core"
	applog "batchdesk/internal/log"
	"batchdesk/internal/middleware/ratelimit"
	"batchdesk/internal/middleware/security"
	"batchdesk/internal/middleware/trace"
	appweb "batchdesk/web"
)

// BatchRepository is the part of the repository the handlers drive.
type BatchRepository interface {
	List(ctx context.Context) ([]core.Batch, error)
	Get(ctx context.Context, id string) (core.Batch, error)
	Add(ctx context.Context, in core.NewBatchInput) (core.Batch, error)
	Update(ctx context.Context, id string, patch core.BatchPatch) error
	Delete(ctx context.Context, id string) error
	Catalog() core.Catalog
}

type Server struct {
	http.Server
	templates *template.Template
	repo      BatchRepository
	gate      *auth.Gate
	logger    *applog.Logger

	sessionTTL time.Duration
	loginLimit int

	securityDetector *security.Detector
	headers          *security.HeadersMiddleware
	traceMiddleware  *trace.Middleware
	loginLimiter     *ratelimit.Limiter
	cacheManager     *cache.Manager

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	created int64
	updated int64
	deleted int64
	exports int64
	uptime  time.Time
}

type Option func(*Server)

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentHTTP)
		}
	}
}

// WithSessionTTL sets the session cookie lifetime. Zero keeps browser-session cookies.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) { s.sessionTTL = d }
}

// WithLoginRateLimit caps login attempts per client IP per minute.
func WithLoginRateLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.loginLimit = n
		}
	}
}

// NewServer configures routes, middleware and templates, returning a ready-to-run http.Server.
func NewServer(addr string, repo BatchRepository, gate *auth.Gate, opts ...Option) *Server {
	s := &Server{
		repo:       repo,
		gate:       gate,
		logger:     applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP),
		loginLimit: 10,
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.securityDetector = security.NewDetector(s.logger)
	s.headers = security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.traceMiddleware = trace.NewMiddleware(s.logger, s.securityDetector.ExtractClientIP)
	s.loginLimiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerWindow: s.loginLimit,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	})

	s.cacheManager = cache.NewManager(s.logger.Logger)
	s.cacheManager.Register(gate.Sessions())
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err, applog.FieldComponent, applog.ComponentTemplate)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.traceMiddleware.Middleware(handler)
	handler = s.headers.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	limitLogin := s.loginLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleLoginThrottled)
	mux.Handle("POST /login", limitLogin(http.HandlerFunc(s.handleLogin)))

	protected := func(h http.HandlerFunc) http.Handler {
		return security.NoStore(auth.RequireSession(s.gate)(h))
	}
	mux.Handle("POST /logout", protected(s.handleLogout))
	mux.Handle("GET /{$}", protected(s.handleIndex))
	mux.Handle("GET /api/batches", protected(s.handleAPIBatches))
	mux.Handle("GET /export", protected(s.handleExport))
	mux.Handle("GET /metrics", protected(s.handleMetrics))

	mux.Handle("POST /batches", protected(s.handleCreateBatch))
	mux.Handle("GET /batches/{id}/edit", protected(s.handleEditBatchForm))
	mux.Handle("POST /batches/{id}", protected(s.handleUpdateBatch))
	mux.Handle("DELETE /batches/{id}", protected(s.handleDeleteBatch))
	mux.Handle("POST /batches/{id}/delete", protected(s.handleDeleteBatch))
}

// Shutdown stops background sweepers and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.loginLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
