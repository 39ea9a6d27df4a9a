package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/laika-mvc/laika/pkg/health"
	"github.com/laika-mvc/laika/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Default infrastructure paths served outside of the route table.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	defaultMetricsPath   = "/metrics"
)

// App wires a Router into an HTTP server. Health probes, metrics and static
// files are served by an outer mux; every other request goes to the
// dispatcher built from the registered routes.
type App struct {
	mux        chi.Router
	dispatcher *Swappable
	logger     *slog.Logger
	sessions   *SessionManager

	routerOpts  []RouterOption
	middlewares []Middleware
	handlers    []Handler
	routeFns    []func(r *Router)

	health       *healthConfig
	metrics      *metricsConfig
	staticRoutes []staticRoute
	optErrs      []error
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

type metricsConfig struct {
	path     string
	gatherer prometheus.Gatherer
}

// New builds the application. The route table is compiled immediately, so
// configuration mistakes such as duplicate route names or unresolvable
// handlers are returned here, before any traffic is served.
//
// Example:
//
//	app, err := laika.New(
//	    laika.WithLogger("web"),
//	    laika.WithRoutes(func(r *laika.Router) {
//	        r.Get("/", home).Name("home")
//	    }),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		mux:    chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.optErrs) > 0 {
		return nil, errors.Join(a.optErrs...)
	}

	if a.sessions != nil {
		a.sessions.SetLogger(a.logger)
	}

	d, err := a.build(nil)
	if err != nil {
		return nil, err
	}
	a.dispatcher = NewSwappable(d)
	a.setupMux()
	return a, nil
}

// Handler returns the root http.Handler.
func (a *App) Handler() http.Handler {
	return a.mux
}

// Dispatcher returns the dispatcher currently serving requests.
func (a *App) Dispatcher() *Dispatcher {
	return a.dispatcher.Dispatcher()
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Reload rebuilds the route table from the configured handlers plus extra
// and swaps it in atomically. In-flight requests finish on the old table.
// On error the current table stays in place.
func (a *App) Reload(extra ...func(r *Router)) error {
	d, err := a.build(extra)
	if err != nil {
		return err
	}
	a.dispatcher.Swap(d)
	a.logger.Info("routes reloaded", slog.Int("routes", len(d.Routes())))
	return nil
}

// Run starts the HTTP server on addr and blocks until shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	if addr == "" {
		addr = cfg.address
	}
	return runServer(runtimeConfig{
		handler:         a.mux,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   cfg.shutdownHooks,
		onListen:        cfg.onListen,
		baseCtx:         cfg.baseCtx,
	})
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *App) build(extra []func(r *Router)) (*Dispatcher, error) {
	opts := append([]RouterOption{RouterLogger(a.logger), Sessions(a.sessions)}, a.routerOpts...)
	r := NewRouter(opts...)
	if len(a.middlewares) > 0 {
		r.Use(a.middlewares...)
	}
	for _, h := range a.handlers {
		h.Routes(r)
	}
	for _, fn := range a.routeFns {
		fn(r)
	}
	for _, fn := range extra {
		fn(r)
	}
	return r.Build()
}

func (a *App) setupMux() {
	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	if a.health != nil {
		a.health.checker = health.New(append([]health.Option{health.WithLogger(a.logger)}, a.health.checkOpts...)...)
		a.mux.Get(a.health.livenessPath, health.LivenessHandler())
		a.mux.Get(a.health.readinessPath, a.health.checker.ReadinessHandler())
	}

	if a.metrics != nil {
		a.mux.Handle(a.metrics.path, promhttp.HandlerFor(a.metrics.gatherer, promhttp.HandlerOpts{}))
	}

	a.mux.NotFound(a.dispatcher.ServeHTTP)
	a.mux.MethodNotAllowed(a.dispatcher.ServeHTTP)
}

// healthConfig holds health endpoint configuration.
type healthConfig struct {
	checker       *health.Checker
	livenessPath  string
	readinessPath string
	checkOpts     []health.Option
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets the liveness endpoint path. Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets the readiness endpoint path. Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	laika.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn func(ctx context.Context) error) HealthOption {
	return func(c *healthConfig) {
		c.checkOpts = append(c.checkOpts, health.WithCheck(name, fn))
	}
}

// WithReadinessTimeout bounds a readiness run.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		c.checkOpts = append(c.checkOpts, health.WithTimeout(d))
	}
}
