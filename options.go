package laika

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/laika-mvc/laika/internal"
)

// App options

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes registers a function that declares routes.
func WithRoutes(fn func(r *Router)) Option {
	return internal.WithRoutes(fn)
}

// WithMiddleware adds raw global before-middleware.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithBaseURL sets the prefix of absolute URLs.
func WithBaseURL(url string) Option {
	return internal.WithBaseURL(url)
}

// WithMiddlewareMode chooses how unknown middleware names are treated.
func WithMiddlewareMode(mode MiddlewareMode) Option {
	return internal.WithMiddlewareMode(mode)
}

// WithErrorHandler sets the handler for errors returned by pipelines.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundPage replaces the default not-found page.
func WithNotFoundPage(c Component) Option {
	return internal.WithNotFoundPage(c)
}

// WithLogger creates a JSON logger tagged with a component name.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithStaticFiles mounts a static file handler at the given pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks serves liveness and readiness probes.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics serves prometheus metrics at path.
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return internal.WithMetrics(path, g)
}

// WithSession enables Context.Session backed by store.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// Health options

// WithLivenessPath sets the liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets the readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn func(ctx context.Context) error) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithReadinessTimeout bounds a readiness run.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return internal.WithReadinessTimeout(d)
}

// Session options

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session lifetime.
func WithSessionMaxAge(d time.Duration) SessionOption {
	return internal.WithSessionMaxAge(d)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionSecure sets the Secure flag of the session cookie.
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionSameSite sets the SameSite mode of the session cookie.
func WithSessionSameSite(mode http.SameSite) SessionOption {
	return internal.WithSessionSameSite(mode)
}

// Router options

// BaseURL sets the prefix used for absolute URLs.
func BaseURL(url string) RouterOption {
	return internal.BaseURL(url)
}

// MiddlewareResolution sets how unknown middleware names are handled.
func MiddlewareResolution(mode MiddlewareMode) RouterOption {
	return internal.MiddlewareResolution(mode)
}

// RouterLogger sets the logger of the router and its dispatcher.
func RouterLogger(l *slog.Logger) RouterOption {
	return internal.RouterLogger(l)
}

// RouterErrorHandler sets the handler for pipeline errors.
func RouterErrorHandler(h ErrorHandler) RouterOption {
	return internal.RouterErrorHandler(h)
}

// NotFoundPage replaces the default not-found page.
func NotFoundPage(c Component) RouterOption {
	return internal.NotFoundPage(c)
}

// Sessions enables Context.Session on a standalone router.
func Sessions(sm *SessionManager) RouterOption {
	return internal.Sessions(sm)
}

// NewSessionManager creates a session manager for standalone routers.
func NewSessionManager(store SessionStore, opts ...SessionOption) *SessionManager {
	return internal.NewSessionManager(store, opts...)
}

// Run options

// Address sets the listen address used when Run gets an empty one.
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger overrides the logger used for server lifecycle messages.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers a cleanup function run after the server stops.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// OnListen registers a callback receiving the bound address.
func OnListen(fn func(addr string)) RunOption {
	return internal.OnListen(fn)
}

// WithContext sets the base context of the server.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
