package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/pkg/cache"
	"github.com/laika-mvc/laika/pkg/logger"
	"github.com/laika-mvc/laika/pkg/session"
)

// build registers routes on a fresh router and returns its dispatcher.
func build(t *testing.T, routes func(r *internal.Router), opts ...internal.RouterOption) *internal.Dispatcher {
	t.Helper()

	opts = append([]internal.RouterOption{internal.RouterLogger(logger.NewNope())}, opts...)
	r := internal.NewRouter(opts...)
	routes(r)
	d, err := r.Build()
	require.NoError(t, err)
	return d
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// withSessions enables in-memory sessions on the router.
func withSessions(t *testing.T) internal.RouterOption {
	t.Helper()

	mem := cache.NewMemory[session.Session]()
	t.Cleanup(func() { _ = mem.Close() })
	return internal.Sessions(internal.NewSessionManager(session.NewCacheStore(mem)))
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
