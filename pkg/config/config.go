// Package config holds application settings loaded from YAML files and
// .env files, addressed by "|"-separated keys such as "database|host".
//
// Each YAML file becomes a top-level section named after the file:
// config/app.yaml is read under "app", so "app|base_url" reads base_url from it.
// Environment variables override file values: "database|host" is looked up
// as DATABASE_HOST first.
package config

import (
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// KeySeparator separates nested key segments.
const KeySeparator = "|"

// Config is a tree of settings. It is safe for concurrent use.
type Config struct {
	mu          sync.RWMutex
	values      map[string]any
	envOverride bool
}

// Option configures a Config.
type Option func(*Config)

// WithoutEnvOverride disables environment variable lookups in getters.
func WithoutEnvOverride() Option {
	return func(c *Config) {
		c.envOverride = false
	}
}

// New creates an empty config.
func New(opts ...Option) *Config {
	c := &Config{
		values:      make(map[string]any),
		envOverride: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores v under key, creating intermediate sections as needed.
// A non-section value on the way is replaced by a section.
func (c *Config) Set(key string, v any) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.values
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[p] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = v
}

// Lookup returns the value under key.
func (c *Config) Lookup(key string) (any, bool) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return nil, false
	}

	if c.envOverride {
		if v, ok := os.LookupEnv(EnvName(key)); ok {
			return v, true
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var cur any = c.values
	for _, p := range parts {
		section, ok := toSection(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = section[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the value under key or nil.
func (c *Config) Get(key string) any {
	v, _ := c.Lookup(key)
	return v
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// String returns the value under key as a string, or def if unset.
func (c *Config) String(key, def string) string {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	return cast.ToString(v)
}

// Int returns the value under key as an int, or def if unset or not numeric.
func (c *Config) Int(key string, def int) int {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// Bool returns the value under key as a bool, or def if unset or not boolean.
func (c *Config) Bool(key string, def bool) bool {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Duration returns the value under key as a duration. Plain numbers are
// nanoseconds; strings use time.ParseDuration syntax.
func (c *Config) Duration(key string, def time.Duration) time.Duration {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}

// Strings returns the value under key as a string slice. A string value is
// split on commas.
func (c *Config) Strings(key string) []string {
	v, ok := c.Lookup(key)
	if !ok {
		return nil
	}
	if s, ok := v.(string); ok {
		var out []string
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return cast.ToStringSlice(v)
}

// Section returns a copy of the section under key.
func (c *Config) Section(key string) map[string]any {
	v, ok := c.Lookup(key)
	if !ok {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	section, ok := toSection(v)
	if !ok {
		return nil
	}
	return maps.Clone(section)
}

// All returns a shallow copy of every top-level section.
func (c *Config) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.values)
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	r := strings.NewReplacer(KeySeparator, "_", ".", "_", "-", "_")
	return strings.ToUpper(r.Replace(strings.Trim(key, KeySeparator)))
}

func splitKey(key string) []string {
	var parts []string
	for p := range strings.SplitSeq(key, KeySeparator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func toSection(v any) (map[string]any, bool) {
	switch s := v.(type) {
	case map[string]any:
		return s, true
	case map[any]any:
		return cast.ToStringMap(s), true
	}
	return nil, false
}
