package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic becomes PanicError with stack", func(t *testing.T) {
		t.Parallel()

		var captured error
		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Recover())
			r.Get("/boom", func(c internal.Context) error {
				panic("test panic")
			})
		}, internal.RouterErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return err
		}))

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		pe, ok := middlewares.AsPanicError(captured)
		require.True(t, ok)
		require.Equal(t, "test panic", pe.Value)
		require.NotEmpty(t, pe.Stack)
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		t.Parallel()

		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Recover())
			r.Get("/", ok)
		})

		rec := serve(d, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", rec.Body.String())
	})

	t.Run("disabled stack leaves Stack nil", func(t *testing.T) {
		t.Parallel()

		var captured error
		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Recover(middlewares.WithRecoverDisablePrintStack()))
			r.Get("/boom", func(c internal.Context) error {
				panic(42)
			})
		}, internal.RouterErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return err
		}))

		serve(d, httptest.NewRequest(http.MethodGet, "/boom", nil))

		pe, ok := middlewares.AsPanicError(captured)
		require.True(t, ok)
		require.Equal(t, 42, pe.Value)
		require.Nil(t, pe.Stack)
	})

	t.Run("stack is truncated to the configured size", func(t *testing.T) {
		t.Parallel()

		var captured error
		d := build(t, func(r *internal.Router) {
			r.Use(middlewares.Recover(middlewares.WithRecoverStackSize(64)))
			r.Get("/boom", func(c internal.Context) error {
				panic("x")
			})
		}, internal.RouterErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return err
		}))

		serve(d, httptest.NewRequest(http.MethodGet, "/boom", nil))

		pe, ok := middlewares.AsPanicError(captured)
		require.True(t, ok)
		require.LessOrEqual(t, len(pe.Stack), 64)
	})
}
