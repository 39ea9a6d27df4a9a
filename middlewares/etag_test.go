package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/middlewares"
)

func TestETag(t *testing.T) {
	t.Parallel()

	d := build(t, func(r *internal.Router) {
		r.Get("/feed", func(c internal.Context) error {
			return c.String(http.StatusOK, "feed body")
		}).AfterFunc(middlewares.ETag)
		r.Post("/feed", func(c internal.Context) error {
			return c.String(http.StatusOK, "created")
		}).AfterFunc(middlewares.ETag)
		r.Get("/empty", func(c internal.Context) error {
			return c.NoContent(http.StatusNoContent)
		}).AfterFunc(middlewares.ETag)
	})

	rec := serve(d, httptest.NewRequest(http.MethodGet, "/feed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)
	require.Equal(t, "feed body", rec.Body.String())

	t.Run("matching If-None-Match gives 304", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		req.Header.Set("If-None-Match", `"other", `+tag)
		rec := serve(d, req)

		require.Equal(t, http.StatusNotModified, rec.Code)
		require.Empty(t, rec.Body.String())
	})

	t.Run("stale tag gets the full body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		req.Header.Set("If-None-Match", `W/"deadbeef"`)
		rec := serve(d, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "feed body", rec.Body.String())
	})

	t.Run("unsafe methods are not tagged", func(t *testing.T) {
		t.Parallel()

		rec := serve(d, httptest.NewRequest(http.MethodPost, "/feed", nil))
		require.Empty(t, rec.Header().Get("ETag"))
	})

	t.Run("empty bodies are not tagged", func(t *testing.T) {
		t.Parallel()

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/empty", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Header().Get("ETag"))
	})
}
