package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/laika-mvc/laika/pkg/logger"
	"github.com/laika-mvc/laika/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called on every build, in order.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutes registers a function that declares routes.
func WithRoutes(fn func(r *Router)) Option {
	return func(a *App) {
		if fn != nil {
			a.routeFns = append(a.routeFns, fn)
		}
	}
}

// WithMiddleware adds raw global before-middleware at DefaultPriority.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithBaseURL sets the prefix of absolute URLs built by Context.AbsoluteURL.
func WithBaseURL(url string) Option {
	return func(a *App) {
		a.routerOpts = append(a.routerOpts, BaseURL(url))
	}
}

// WithMiddlewareMode chooses how unknown middleware names are treated.
// The default is MiddlewareLenient.
func WithMiddlewareMode(mode MiddlewareMode) Option {
	return func(a *App) {
		a.routerOpts = append(a.routerOpts, MiddlewareResolution(mode))
	}
}

// WithErrorHandler sets the handler for errors returned by pipelines.
// When it returns an error itself, the default handler takes over.
//
// Example:
//
//	laika.WithErrorHandler(func(c laika.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.routerOpts = append(a.routerOpts, RouterErrorHandler(h))
	}
}

// WithNotFoundPage replaces the page rendered when no route or fallback matches.
func WithNotFoundPage(c Component) Option {
	return func(a *App) {
		a.routerOpts = append(a.routerOpts, NotFoundPage(c))
	}
}

// WithLogger creates a JSON logger tagged with a component name.
// Extractors pull request-scoped values from the context on every call.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	laika.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			a.optErrs = append(a.optErrs, fmt.Errorf("static files %s: %w", pattern, err))
			return
		}
		files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			files.ServeHTTP(w, r)
		})
		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}

// WithHealthChecks serves liveness and readiness probes.
//
// Example:
//
//	laika.WithHealthChecks(
//	    laika.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.health = cfg
	}
}

// WithMetrics serves the gatherer's metrics at path ("/metrics" when empty).
// A nil gatherer serves the default prometheus registry.
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return func(a *App) {
		if path == "" {
			path = defaultMetricsPath
		}
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		a.metrics = &metricsConfig{path: path, gatherer: g}
	}
}

// WithSession enables Context.Session backed by store.
// Sessions are loaded lazily and saved before the response is sent.
//
// Example:
//
//	store := session.NewCacheStore(cache.NewRedis[session.Session](client, cache.WithPrefix("session")))
//	laika.WithSession(store, laika.WithSessionSecure(true))
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessions = NewSessionManager(store, opts...)
	}
}
