package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/middlewares"
)

func csrfRouter(t *testing.T, opts ...middlewares.CSRFOption) http.Handler {
	t.Helper()

	return build(t, func(r *internal.Router) {
		r.Use(middlewares.CSRF(opts...))
		r.Get("/form", func(c internal.Context) error {
			return c.String(http.StatusOK, middlewares.CSRFToken(c))
		})
		r.Post("/form", func(c internal.Context) error {
			return c.String(http.StatusOK, "saved:"+middlewares.CSRFToken(c))
		})
	}, withSessions(t))
}

// issueToken performs a GET and returns the token and session cookie.
func issueToken(t *testing.T, h http.Handler) (string, *http.Cookie) {
	t.Helper()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token := rec.Body.String()
	require.Len(t, token, 64)
	return token, cookies[0]
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	t.Run("token from header is accepted", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t)
		token, cookie := issueToken(t, h)

		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", token)
		rec := serve(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "saved:"+token, rec.Body.String())
	})

	t.Run("token from form field is accepted", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t)
		token, cookie := issueToken(t, h)

		form := url.Values{"_token": {token}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		rec := serve(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token is forbidden", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t)
		_, cookie := issueToken(t, h)

		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(cookie)
		rec := serve(h, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "CSRF token mismatch", rec.Body.String())
	})

	t.Run("wrong token is forbidden", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t)
		_, cookie := issueToken(t, h)

		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", strings.Repeat("0", 64))
		rec := serve(h, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("token is stable within its lifetime", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t)
		token, cookie := issueToken(t, h)

		req := httptest.NewRequest(http.MethodGet, "/form", nil)
		req.AddCookie(cookie)
		rec := serve(h, req)

		require.Equal(t, token, rec.Body.String())
	})

	t.Run("rotation issues a new token after use", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t, middlewares.WithCSRFRotateOnUse())
		token, cookie := issueToken(t, h)

		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", token)
		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEqual(t, "saved:"+token, rec.Body.String())

		req = httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", token)
		rec = serve(h, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("expired token is replaced", func(t *testing.T) {
		t.Parallel()

		h := csrfRouter(t, middlewares.WithCSRFLifetime(time.Nanosecond))
		token, cookie := issueToken(t, h)
		time.Sleep(time.Millisecond)

		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(cookie)
		req.Header.Set("X-CSRF-Token", token)
		rec := serve(h, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("sessions are required", func(t *testing.T) {
		t.Parallel()

		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.CSRF())
			r.Get("/", ok)
		})

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
