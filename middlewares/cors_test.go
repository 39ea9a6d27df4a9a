package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/middlewares"
)

func corsRouter(t *testing.T, opts ...middlewares.CORSOption) http.Handler {
	t.Helper()

	return build(t, func(r *internal.Router) {
		r.Use(middlewares.CORS(opts...))
		r.Get("/api/items", ok)
		r.Options("/{path:.*}", middlewares.Preflight)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("no origin means no headers", func(t *testing.T) {
		t.Parallel()

		rec := serve(corsRouter(t), httptest.NewRequest(http.MethodGet, "/api/items", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard answers with star", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := serve(corsRouter(t), req)

		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "ok", rec.Body.String())
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := serve(corsRouter(t, middlewares.WithAllowCredentials()), req)

		require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("disallowed origin gets no headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://evil.com")
		rec := serve(corsRouter(t, middlewares.WithAllowOrigins("https://app.com")), req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin func overrides the list", func(t *testing.T) {
		t.Parallel()

		h := corsRouter(t,
			middlewares.WithAllowOrigins("https://app.com"),
			middlewares.WithAllowOriginFunc(func(o string) bool { return strings.HasSuffix(o, ".example.com") }),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://a.example.com")
		rec := serve(h, req)
		require.Equal(t, "https://a.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "https://app.com")
		rec = serve(h, req)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered with 204", func(t *testing.T) {
		t.Parallel()

		h := corsRouter(t,
			middlewares.WithAllowMethods(http.MethodGet, http.MethodPost),
			middlewares.WithExposeHeaders("X-Total"),
		)

		req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := serve(h, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "X-Total", rec.Header().Get("Access-Control-Expose-Headers"))
		require.Equal(t, "43200", rec.Header().Get("Access-Control-Max-Age"))
		require.Empty(t, rec.Body.String())
	})

	t.Run("zero max age omits the header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := serve(corsRouter(t, middlewares.WithMaxAge(0)), req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Max-Age"))
	})
}
