package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bizai/internal/api"
	"bizai/internal/cache"
	"bizai/internal/catalog"
	"bizai/internal/config"
	"bizai/internal/core"
	"bizai/internal/journal"
	"bizai/internal/log"
	"bizai/internal/middleware/ratelimit"
	"bizai/internal/middleware/security"
	"bizai/internal/middleware/trace"
	"bizai/internal/services"
	"bizai/internal/session"
	appweb "bizai/web"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Config  *config.Config
	Logger  *log.Logger
	API     *api.Client
	Catalog *catalog.Catalog
	Journal journal.Store
}

// appMetrics holds the upload counters behind /metrics.
type appMetrics struct {
	uptime  time.Time
	uploads map[core.Module]*outcomeCounts
}

type outcomeCounts struct {
	loaded int64
	failed int64
}

func newAppMetrics() *appMetrics {
	m := &appMetrics{uptime: time.Now(), uploads: make(map[core.Module]*outcomeCounts)}
	for _, mod := range core.Modules() {
		m.uploads[mod] = &outcomeCounts{}
	}
	return m
}

func (m *appMetrics) recordUpload(mod core.Module, failed bool) {
	c, ok := m.uploads[mod]
	if !ok {
		return
	}
	if failed {
		atomic.AddInt64(&c.failed, 1)
	} else {
		atomic.AddInt64(&c.loaded, 1)
	}
}

// Server is the dashboard web server.
type Server struct {
	http.Server

	cfg       *config.Config
	logger    *log.Logger
	templates *template.Template
	api       *api.Client
	catalog   *catalog.Catalog
	journal   journal.Store
	sessions  *session.Store
	uploads   *services.UploadService
	dashboard *services.DashboardService

	appMetrics       *appMetrics
	cacheManager     *cache.Manager
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server. A template parse failure is logged and leaves the
// pages answering 500, so /healthz and /readyz still work.
func NewServer(deps Deps) *Server {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	apiClient := deps.API
	if apiClient == nil {
		apiClient = api.NewClient(cfg.AnalyticsAPIURL, api.WithTimeout(cfg.BackendTimeout))
	}
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.MustDefault()
	}
	store := deps.Journal
	if store == nil {
		store = journal.NewMemoryStore(0)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr(),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		cfg:              cfg,
		logger:           logger,
		api:              apiClient,
		catalog:          cat,
		journal:          store,
		sessions:         session.NewStore(cfg.SessionMaxEntries, cfg.SessionTTL),
		uploads:          services.NewUploadService(store, logger),
		dashboard:        services.NewDashboardService(store, logger, 10),
		appMetrics:       newAppMetrics(),
		cacheManager:     cache.NewManager(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		now:              time.Now,
	}
	for _, proxy := range cfg.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(proxy); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "proxy", proxy, log.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	s.cacheManager.Register("sessions", s.sessions.Cleaner())
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(log.ComponentTemplate).Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleLanding)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /modules/{module}", s.handleModulePage)
	mux.HandleFunc("/modules/{module}/upload", s.handleUpload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// trace → logger → security headers → detector → rate limit (POST) → mux
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited, http.MethodPost)(handler)
	handler = s.securityDetector.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.LoggerMiddleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// render executes a template into a buffer so a failure can still become a
// clean 500 instead of a half-written page.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesNotLoaded
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(ctx, "Template execution failed", log.FieldError, err, log.FieldTemplate, name)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, err := s.render(r.Context(), name, data)
	if err != nil {
		if err == errTemplatesNotLoaded {
			s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		}
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(string(body)).Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
