package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler completes", func(t *testing.T) {
		t.Parallel()

		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Timeout(time.Second))
			r.Get("/", ok)
		})

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", rec.Body.String())
	})

	t.Run("slow handler yields TimeoutError", func(t *testing.T) {
		t.Parallel()

		var captured error
		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Timeout(20 * time.Millisecond))
			r.Get("/slow", func(c internal.Context) error {
				<-middlewares.TimeoutContext(c).Done()
				return nil
			})
		}, internal.RouterErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return middlewares.ErrorHandler(c, err)
		}))

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/slow", nil))
		require.Equal(t, http.StatusGatewayTimeout, rec.Code)

		te, ok := middlewares.AsTimeoutError(captured)
		require.True(t, ok)
		require.Equal(t, 20*time.Millisecond, te.Duration)
	})

	t.Run("handler error passes through", func(t *testing.T) {
		t.Parallel()

		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Timeout(time.Second))
			r.Get("/", func(c internal.Context) error {
				return internal.ErrBadRequest("bad input")
			})
		})

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "bad input", rec.Body.String())
	})

	t.Run("timeout context carries a deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool
		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Timeout(time.Second))
			r.Get("/", func(c internal.Context) error {
				_, hasDeadline = middlewares.TimeoutContext(c).Deadline()
				return nil
			})
		})

		serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.True(t, hasDeadline)
	})

	t.Run("without the middleware the request context is returned", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool
		d := build(t, func(r *internal.Router) {
			r.Get("/", func(c internal.Context) error {
				_, hasDeadline = middlewares.TimeoutContext(c).Deadline()
				return nil
			})
		})

		serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.False(t, hasDeadline)
	})

	t.Run("panic in handler becomes PanicError", func(t *testing.T) {
		t.Parallel()

		var captured error
		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Timeout(time.Second))
			r.Get("/boom", func(c internal.Context) error {
				panic("handler exploded")
			})
			r.Get("/", ok)
		}, internal.RouterErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return middlewares.ErrorHandler(c, err)
		}))

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		pe, ok := middlewares.AsPanicError(captured)
		require.True(t, ok)
		require.Equal(t, "handler exploded", pe.Value)
		require.NotEmpty(t, pe.Stack)

		rec = serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", rec.Body.String())
	})

	t.Run("output after the deadline is dropped", func(t *testing.T) {
		t.Parallel()

		type lateKey struct{}
		release := make(chan struct{})
		finished := make(chan struct{})
		var writeErr error
		var seen any

		d := build(t, func(r *internal.Router) {
			r.Use(func(next internal.HandlerFunc) internal.HandlerFunc {
				return func(c internal.Context) error {
					err := next(c)
					seen = c.Get(lateKey{})
					return err
				}
			})
			r.Use(middlewares.Timeout(20 * time.Millisecond))
			r.Get("/slow", func(c internal.Context) error {
				defer close(finished)
				<-middlewares.TimeoutContext(c).Done()
				<-release
				c.Set(lateKey{}, "late")
				c.SetHeader("X-Late", "yes")
				_, writeErr = c.Write([]byte("late"))
				_ = c.NoContent(http.StatusTeapot)
				return nil
			})
		}, internal.RouterErrorHandler(middlewares.ErrorHandler))

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/slow", nil))
		close(release)
		<-finished

		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
		require.NotContains(t, rec.Body.String(), "late")
		require.Empty(t, rec.Header().Get("X-Late"))
		require.Nil(t, seen)
		require.True(t, errors.Is(writeErr, http.ErrBodyNotAllowed))
	})

	t.Run("handler output reaches outer middleware", func(t *testing.T) {
		t.Parallel()

		type userKey struct{}
		var seen any
		var header string
		d := build(t, func(r *internal.Router) {
			r.Use(func(next internal.HandlerFunc) internal.HandlerFunc {
				return func(c internal.Context) error {
					err := next(c)
					seen = c.Get(userKey{})
					header = c.Response().Header().Get("X-Inner")
					return err
				}
			})
			r.Use(middlewares.Timeout(time.Second))
			r.Get("/", func(c internal.Context) error {
				c.Set(userKey{}, "alice")
				c.SetHeader("X-Inner", "set")
				return c.String(http.StatusCreated, "made")
			})
		})

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "made", rec.Body.String())
		require.Equal(t, "set", rec.Header().Get("X-Inner"))
		require.Equal(t, "alice", seen)
		require.Equal(t, "set", header)
	})

	t.Run("session loaded under the deadline is persisted", func(t *testing.T) {
		t.Parallel()

		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Timeout(time.Second))
			r.Get("/", func(c internal.Context) error {
				sess, err := c.Session()
				if err != nil {
					return err
				}
				sess.Set("visits", 1)
				return c.NoContent(http.StatusNoContent)
			})
		}, withSessions(t))

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotEmpty(t, rec.Result().Cookies())
	})
}
