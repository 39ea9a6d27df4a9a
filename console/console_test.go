package console_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/console"
	"github.com/laika-mvc/laika/internal"
	"github.com/laika-mvc/laika/pkg/config"
	"github.com/laika-mvc/laika/pkg/logger"
)

func testApp(cfg *config.Config) (*internal.App, error) {
	return internal.New(
		internal.WithCustomLogger(logger.NewNope()),
		internal.WithRoutes(func(r *internal.Router) {
			r.RegisterMiddleware("auth", internal.BeforeFunc(func(c internal.Context, next internal.HandlerFunc, _ ...string) error {
				return next(c)
			}))
			r.Get("/post/{slug}", func(c internal.Context, slug string) string { return slug }).Name("post.show")
			r.Group("/admin", func(r *internal.Router) {
				r.Post("/users", func(c internal.Context) error { return nil })
			}, "auth")
		}),
	)
}

func run(t *testing.T, load console.Loader, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := console.New("blog", load)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir(), "--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("prints the pipeline", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, testApp, "inspect", "post", "/admin/users/")
		require.NoError(t, err)
		require.Contains(t, out, "POST /admin/users/")
		require.Contains(t, out, "1. auth")
		require.Contains(t, out, "2. "+internal.ControllerMarker)
	})

	t.Run("reports no match", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, testApp, "inspect", "GET", "/nowhere")
		require.NoError(t, err)
		require.Equal(t, console.NoRouteMatches+"\n", out)
	})

	t.Run("requires two arguments", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, testApp, "inspect", "GET")
		require.Error(t, err)
	})

	t.Run("loader errors surface", func(t *testing.T) {
		t.Parallel()

		failing := func(*config.Config) (*internal.App, error) { return nil, errors.New("bad routes") }
		_, err := run(t, failing, "inspect", "GET", "/")
		require.ErrorContains(t, err, "bad routes")
	})
}

func TestInspectAll(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"inspect:all", "list:route"} {
		out, err := run(t, testApp, name)
		require.NoError(t, err, name)
		require.Contains(t, out, "Pattern", name)
		require.Contains(t, out, "/post/{slug}", name)
		require.Contains(t, out, "post.show", name)
		require.Contains(t, out, "/admin/users", name)
		require.NotContains(t, out, "\x1b[", name)
	}

	empty := func(*config.Config) (*internal.App, error) {
		return internal.New(internal.WithCustomLogger(logger.NewNope()))
	}
	out, err := run(t, empty, "inspect:all")
	require.NoError(t, err)
	require.Equal(t, "No routes registered\n", out)
}

func TestServe(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	cmd := console.New("blog", testApp)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config-dir", t.TempDir(), "serve", "--addr", "127.0.0.1:0"})

	require.NoError(t, cmd.ExecuteContext(ctx))
	require.True(t, strings.HasPrefix(out.String(), "Listening on http://127.0.0.1:"), out.String())
}

func TestConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("name: blog\n"), 0o600))

	var seen string
	load := func(cfg *config.Config) (*internal.App, error) {
		seen = cfg.String("app|name", "")
		return testApp(cfg)
	}

	var out bytes.Buffer
	cmd := console.New("blog", load)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config-dir", dir, "inspect", "GET", "/post/x"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "blog", seen)

	t.Run("missing explicit directory fails", func(t *testing.T) {
		t.Parallel()

		cmd := console.New("blog", testApp)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config-dir", filepath.Join(dir, "missing"), "inspect:all"})
		require.Error(t, cmd.Execute())
	})
}
