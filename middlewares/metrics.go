package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/laika-mvc/laika/internal"
)

// unmatchedRoute labels requests served by a fallback.
const unmatchedRoute = "unmatched"

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	Namespace  string
	Registerer prometheus.Registerer
	Buckets    []float64
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace prefixes metric names.
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Namespace = ns
	}
}

// WithMetricsRegisterer registers the collectors on r instead of the default registry.
func WithMetricsRegisterer(r prometheus.Registerer) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Registerer = r
	}
}

// WithMetricsBuckets sets the latency histogram buckets, in seconds.
func WithMetricsBuckets(buckets ...float64) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Buckets = buckets
	}
}

// Metrics returns middleware counting requests and observing their latency,
// labeled by method, route pattern and status. Collectors already
// registered on the registerer are reused, so Metrics can be called again
// after a route reload.
func Metrics(opts ...MetricsOption) internal.Middleware {
	cfg := &MetricsConfig{
		Registerer: prometheus.DefaultRegisterer,
		Buckets:    prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	labels := []string{"method", "route", "status"}
	requests := register(cfg.Registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests served, by method, route pattern and status.",
	}, labels))
	duration := register(cfg.Registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Request latency, by method, route pattern and status.",
		Buckets:   cfg.Buckets,
	}, labels))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Route().Pattern
			if route == "" {
				route = unmatchedRoute
			}
			status := strconv.Itoa(statusOf(c, err))
			method := c.Request().Method

			requests.WithLabelValues(method, route, status).Inc()
			duration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusOf predicts the status the dispatcher will send for err.
func statusOf(c internal.Context, err error) int {
	if err == nil {
		return c.ResponseWriter().Status()
	}
	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return httpErr.Code
	}
	if IsTimeoutError(err) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func register[T prometheus.Collector](r prometheus.Registerer, c T) T {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
