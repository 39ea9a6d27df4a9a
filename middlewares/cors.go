package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/laika-mvc/laika/internal"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// DefaultCORSConfig allows every origin with the common methods and headers.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-Token"},
	MaxAge:       DefaultCORSMaxAge,
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins is a static list of allowed origins. "*" allows any.
	AllowOrigins []string

	// AllowOriginFunc, when set, replaces AllowOrigins.
	AllowOriginFunc func(origin string) bool

	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string

	// AllowCredentials echoes the request origin instead of "*".
	AllowCredentials bool

	// MaxAge is how long preflight responses may be cached.
	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc sets a dynamic origin validator.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods sets the allowed HTTP methods.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders sets the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders sets the headers exposed to the client.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials enables credentials support.
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(duration time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = duration
	}
}

// corsPolicy is a CORSConfig with its header values joined once.
type corsPolicy struct {
	cfg           CORSConfig
	wildcard      bool
	allowMethods  string
	allowHeaders  string
	exposeHeaders string
	maxAge        string
}

func newCORSPolicy(opts ...CORSOption) *corsPolicy {
	cfg := DefaultCORSConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &corsPolicy{
		cfg:           cfg,
		wildcard:      slices.Contains(cfg.AllowOrigins, "*"),
		allowMethods:  strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:  strings.Join(cfg.AllowHeaders, ", "),
		exposeHeaders: strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:        strconv.Itoa(int(cfg.MaxAge.Seconds())),
	}
}

func (p *corsPolicy) allows(origin string) bool {
	if p.cfg.AllowOriginFunc != nil {
		return p.cfg.AllowOriginFunc(origin)
	}
	return p.wildcard || slices.Contains(p.cfg.AllowOrigins, origin)
}

// handle writes the CORS headers and reports whether the request was a
// preflight that has been answered.
func (p *corsPolicy) handle(c internal.Context) (bool, error) {
	origin := c.Header("Origin")
	if origin == "" || !p.allows(origin) {
		return false, nil
	}

	h := c.Response().Header()
	h.Add("Vary", "Origin")
	if p.cfg.AllowCredentials || !p.wildcard {
		h.Set("Access-Control-Allow-Origin", origin)
	} else {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	if p.cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.exposeHeaders != "" {
		h.Set("Access-Control-Expose-Headers", p.exposeHeaders)
	}

	if c.Request().Method != http.MethodOptions {
		return false, nil
	}

	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
	h.Set("Access-Control-Allow-Methods", p.allowMethods)
	h.Set("Access-Control-Allow-Headers", p.allowHeaders)
	if p.cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
	return true, c.NoContent(http.StatusNoContent)
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
//
// Preflight requests only reach the middleware when an OPTIONS route
// matches, since the dispatcher answers 405 for methods without routes:
//
//	r.Use(middlewares.CORS())
//	r.Options("/{path:.*}", middlewares.Preflight)
func CORS(opts ...CORSOption) internal.Middleware {
	p := newCORSPolicy(opts...)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			done, err := p.handle(c)
			if done {
				return err
			}
			return next(c)
		}
	}
}

// Preflight answers OPTIONS requests with 204. Use it as the handler of a
// catch-all OPTIONS route behind CORS.
func Preflight(c internal.Context) error {
	return c.NoContent(http.StatusNoContent)
}
