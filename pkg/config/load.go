package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvSection is the section holding values read by LoadEnv.
const EnvSection = "env"

var sectionName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Load creates a config from YAML files. See LoadFile.
func Load(paths ...string) (*Config, error) {
	c := New()
	for _, p := range paths {
		if err := c.LoadFile(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadFile reads a YAML file into the section named after the file.
// "index" and names that are not plain identifiers are skipped.
func (c *Config) LoadFile(path string) error {
	section := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	section = strings.ToLower(section)
	if section == "index" || !sectionName.MatchString(section) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	return c.LoadYAML(section, data)
}

// LoadYAML parses data into section. An empty document sets an empty section.
func (c *Config) LoadYAML(section string, data []byte) error {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, section, err)
	}
	c.Set(section, values)
	return nil
}

// LoadDir loads every *.yaml and *.yml file in dir.
func (c *Config) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			if err := c.LoadFile(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadEnv reads .env files into the process environment, without replacing
// variables that are already set, and mirrors them under the "env" section.
// With no paths it reads ".env"; a missing default file is not an error.
func (c *Config) LoadEnv(paths ...string) error {
	optional := len(paths) == 0
	if optional {
		paths = []string{".env"}
	}

	for _, p := range paths {
		values, err := godotenv.Read(p)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: %w", ErrReadFile, err)
		}
		for k, v := range values {
			if _, set := os.LookupEnv(k); !set {
				if err := os.Setenv(k, v); err != nil {
					return err
				}
			}
			c.Set(EnvSection+KeySeparator+strings.ToLower(k), v)
		}
	}
	return nil
}
