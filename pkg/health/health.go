// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/laika-mvc/laika/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports a dependency failure. redis.Healthcheck has this shape.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates the results of a readiness run.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Healthy reports whether every check passed.
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker runs named readiness checks in parallel.
type Checker struct {
	checks  map[string]CheckFunc
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds a whole readiness run.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCheck adds a named check.
func WithCheck(name string, fn CheckFunc) Option {
	return func(c *Checker) {
		c.Add(name, fn)
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers fn under name, replacing any previous check with that name.
func (c *Checker) Add(name string, fn CheckFunc) {
	if name != "" && fn != nil {
		c.checks[name] = fn
	}
}

// Run executes every check concurrently.
func (c *Checker) Run(ctx context.Context) *Report {
	if len(c.checks) == 0 {
		return &Report{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Result, len(c.checks))
		status  = StatusHealthy
	)
	for name, check := range c.checks {
		wg.Go(func() {
			res := Result{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				c.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = res
			if res.Status == StatusUnhealthy {
				status = StatusUnhealthy
			}
		})
	}
	wg.Wait()

	return &Report{Status: status, Checks: results}
}

// LivenessHandler always answers OK while the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Report{Status: StatusHealthy})
	}
}

// ReadinessHandler answers 200 when every check passes and 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, report)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, report *Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if report.Healthy() {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
