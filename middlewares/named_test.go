package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/middlewares"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	d := build(t, func(r *internal.Router) {
		middlewares.Register(r)

		r.Group("/api", func(r *internal.Router) {
			r.Get("/items", ok)
			r.Options("/{path:.*}", middlewares.Preflight)
		}, "request_id", "cors:https://app.com")

		r.Get("/slow", func(c internal.Context) error {
			<-middlewares.TimeoutContext(c).Done()
			return nil
		}).Middleware("timeout:10ms")

		r.Get("/bad-timeout", ok).Middleware("timeout:soon")

		r.Get("/tagged", ok).After("etag")
	}, internal.MiddlewareResolution(internal.MiddlewareStrict),
		internal.RouterErrorHandler(middlewares.ErrorHandler))

	t.Run("named group middleware with parameters", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://app.com")
		rec := serve(d, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		require.Equal(t, "https://app.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://other.com")
		rec = serve(d, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("named preflight", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
		req.Header.Set("Origin", "https://app.com")
		rec := serve(d, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("timeout parameter", func(t *testing.T) {
		t.Parallel()

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/slow", nil))
		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("invalid timeout parameter fails the request", func(t *testing.T) {
		t.Parallel()

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/bad-timeout", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("named after middleware", func(t *testing.T) {
		t.Parallel()

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/tagged", nil))
		require.NotEmpty(t, rec.Header().Get("ETag"))
	})

	t.Run("inspected pipeline shows descriptors", func(t *testing.T) {
		t.Parallel()

		steps, found := d.Inspect(http.MethodGet, "/api/items")
		require.True(t, found)
		require.Equal(t, []string{"request_id", "cors:https://app.com", internal.ControllerMarker}, steps)
	})
}

func TestParseTimeoutForms(t *testing.T) {
	t.Parallel()

	for _, param := range []string{"1", "1s", "1000ms"} {
		var (
			deadline    time.Time
			hasDeadline bool
		)
		d := build(t, func(r *internal.Router) {
			middlewares.Register(r)
			r.Get("/", func(c internal.Context) error {
				deadline, hasDeadline = middlewares.TimeoutContext(c).Deadline()
				return nil
			}).Middleware("timeout:" + param)
		})

		start := time.Now()
		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code, param)
		require.True(t, hasDeadline, param)
		require.WithinDuration(t, start.Add(time.Second), deadline, 200*time.Millisecond, param)
	}
}
