package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laika-mvc/laika/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSetAndLookupNestedKeys(t *testing.T) {
	t.Parallel()

	c := config.New(config.WithoutEnvOverride())
	c.Set("route|get|home", "/")
	c.Set("route|post", map[string]any{"login": "/login"})

	assert.Equal(t, "/", c.Get("route|get|home"))
	assert.Equal(t, "/login", c.Get("route|post|login"))
	assert.True(t, c.Has("route|get"))
	assert.False(t, c.Has("route|put"))
	assert.Nil(t, c.Get("route|get|home|deeper"))
	assert.Nil(t, c.Get(""))
}

func TestSetReplacesScalarWithSection(t *testing.T) {
	t.Parallel()

	c := config.New(config.WithoutEnvOverride())
	c.Set("app", "scalar")
	c.Set("app|name", "laika")

	assert.Equal(t, "laika", c.String("app|name", ""))
}

func TestTypedGetters(t *testing.T) {
	t.Parallel()

	c := config.New(config.WithoutEnvOverride())
	c.Set("app|limit", "25")
	c.Set("app|debug", "true")
	c.Set("app|timeout", "3s")
	c.Set("app|origins", "a.test, b.test,")
	c.Set("app|hosts", []any{"x", "y"})
	c.Set("app|bad", "not-a-number")

	assert.Equal(t, 25, c.Int("app|limit", 0))
	assert.Equal(t, 7, c.Int("app|bad", 7))
	assert.Equal(t, 9, c.Int("app|missing", 9))
	assert.True(t, c.Bool("app|debug", false))
	assert.Equal(t, 3*time.Second, c.Duration("app|timeout", 0))
	assert.Equal(t, []string{"a.test", "b.test"}, c.Strings("app|origins"))
	assert.Equal(t, []string{"x", "y"}, c.Strings("app|hosts"))
	assert.Equal(t, "fallback", c.String("app|nope", "fallback"))
}

func TestLoadYAMLFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	app := writeFile(t, dir, "app.yaml", "name: laika\ntemplate:\n  dir: views\nlimit: 20\n")
	writeFile(t, dir, "index.yaml", "ignored: true\n")
	writeFile(t, dir, "secret.yml", "key: s3cr3t\n")

	c, err := config.Load(app)
	require.NoError(t, err)
	assert.Equal(t, "laika", c.String("app|name", ""))
	assert.Equal(t, "views", c.String("app|template|dir", ""))
	assert.Equal(t, 20, c.Int("app|limit", 0))

	require.NoError(t, c.LoadDir(dir))
	assert.Equal(t, "s3cr3t", c.String("secret|key", ""))
	assert.False(t, c.Has("index"))
	assert.Len(t, c.Section("app"), 3)
}

func TestLoadYAMLErrors(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrReadFile)

	c := config.New()
	err = c.LoadYAML("app", []byte("name: [unclosed"))
	require.ErrorIs(t, err, config.ErrParse)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LAIKA_TEST_DATABASE_HOST", "db.internal")

	c := config.New()
	c.Set("laika_test_database|host", "localhost")
	assert.Equal(t, "db.internal", c.String("laika_test_database|host", ""))

	plain := config.New(config.WithoutEnvOverride())
	plain.Set("laika_test_database|host", "localhost")
	assert.Equal(t, "localhost", plain.String("laika_test_database|host", ""))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "LAIKA_TEST_ENV_ONE=one\nLAIKA_TEST_ENV_TWO=\"two words\"\n")
	t.Setenv("LAIKA_TEST_ENV_ONE", "preset")

	c := config.New(config.WithoutEnvOverride())
	require.NoError(t, c.LoadEnv(path))

	assert.Equal(t, "preset", os.Getenv("LAIKA_TEST_ENV_ONE"))
	assert.Equal(t, "two words", os.Getenv("LAIKA_TEST_ENV_TWO"))
	assert.Equal(t, "one", c.String("env|laika_test_env_one", ""))
	t.Cleanup(func() { _ = os.Unsetenv("LAIKA_TEST_ENV_TWO") })

	err := c.LoadEnv(filepath.Join(dir, "missing.env"))
	require.ErrorIs(t, err, config.ErrReadFile)
}

func TestEnvName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DATABASE_HOST", config.EnvName("database|host"))
	assert.Equal(t, "APP_TEMPLATE_DIR", config.EnvName("|app|template.dir|"))
}
