package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
)

type pingHandler struct{}

func (pingHandler) Routes(r *internal.Router) {
	r.Get("/ping", func(c internal.Context) string { return "pong" }).Name("ping")
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAppServesRoutes(t *testing.T) {
	t.Parallel()

	app, err := internal.New(
		internal.WithHandlers(pingHandler{}),
		internal.WithRoutes(func(r *internal.Router) {
			r.Get("/hello/{name}", func(c internal.Context, name string) string { return "hello " + name })
		}),
		internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				c.SetHeader("X-App", "laika")
				return next(c)
			}
		}),
	)
	require.NoError(t, err)

	rec := get(t, app, "/ping")
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, "laika", rec.Header().Get("X-App"))

	assert.Equal(t, "hello ada", get(t, app.Handler(), "/hello/ada").Body.String())

	rec = get(t, app, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 Page Not Found!")

	req := httptest.NewRequest(http.MethodDelete, "/ping", nil)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAppReportsConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := internal.New(internal.WithRoutes(func(r *internal.Router) {
		r.Get("/a", "Missing@index")
		r.Get("/b", func(c internal.Context) error { return nil }).Name("x")
		r.Get("/c", func(c internal.Context) error { return nil }).Name("x")
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, internal.ErrHandlerResolution)
	assert.ErrorIs(t, err, internal.ErrDuplicateRouteName)

	_, err = internal.New(internal.WithStaticFiles("/static/", fstest.MapFS{}, "../outside"))
	require.Error(t, err)
}

func TestAppHealthAndMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "laika_test_total", Help: "test counter"})
	reg.MustRegister(counter)
	counter.Inc()

	ready := errors.New("db down")
	app, err := internal.New(
		internal.WithHealthChecks(
			internal.WithReadinessCheck("db", func(context.Context) error { return ready }),
		),
		internal.WithMetrics("", reg),
	)
	require.NoError(t, err)

	rec := get(t, app, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(t, app, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "laika_test_total 1")
}

func TestAppStaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"public/app.css":       {Data: []byte("body{}")},
		"public/img/logo.svg":  {Data: []byte("<svg/>")},
		"public/img/index.txt": {Data: []byte("listing")},
	}
	app, err := internal.New(internal.WithStaticFiles("/static/", fsys, "public"))
	require.NoError(t, err)

	rec := get(t, app, "/static/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, "<svg/>", get(t, app, "/static/img/logo.svg").Body.String())
	assert.Equal(t, http.StatusNotFound, get(t, app, "/static/img/").Code)
}

func TestAppReload(t *testing.T) {
	t.Parallel()

	app, err := internal.New(internal.WithHandlers(pingHandler{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/extra").Code)

	require.NoError(t, app.Reload(func(r *internal.Router) {
		r.Get("/extra", func(c internal.Context) string { return "extra" })
	}))
	assert.Equal(t, "extra", get(t, app, "/extra").Body.String())
	assert.Equal(t, "pong", get(t, app, "/ping").Body.String())
	assert.Len(t, app.Dispatcher().Routes(), 2)

	err = app.Reload(func(r *internal.Router) {
		r.Get("/ping", "Nope@index")
	})
	require.ErrorIs(t, err, internal.ErrHandlerResolution)
	assert.Equal(t, "extra", get(t, app, "/extra").Body.String(), "failed reload keeps the current table")
}
