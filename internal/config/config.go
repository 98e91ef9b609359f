// Package config loads the flang.yaml file of the command line driver.
//
//	version: v1.0.0      # language version the programs are written for
//	log-level: info
//	max-depth: 5000
//	parallel: 4
//	prelude:
//	  - lib/list.fl
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the name looked up next to the programs.
const DefaultFilename = "flang.yaml"

// Config is the content of a flang.yaml file.
type Config struct {
	Path string `yaml:"-"`

	Version  string   `yaml:"version"`
	LogLevel string   `yaml:"log-level"`
	MaxDepth int      `yaml:"max-depth"`
	Parallel int      `yaml:"parallel"`
	Prelude  []string `yaml:"prelude"`
}

// Load parses the configuration file at path. Relative prelude entries are
// resolved against the directory of the file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs

	dir := filepath.Dir(abs)
	for i, p := range cfg.Prelude {
		if !filepath.IsAbs(p) {
			cfg.Prelude[i] = filepath.Join(dir, p)
		}
	}
	return cfg, nil
}

// Decode reads a configuration from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("max-depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.Parallel < 0 {
		return nil, fmt.Errorf("parallel must not be negative, got %d", cfg.Parallel)
	}
	return &cfg, nil
}

// Find looks for DefaultFilename in dir and its parents.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, DefaultFilename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Level returns the configured log level, or fallback when none is set.
func (c *Config) Level(fallback slog.Level) (slog.Level, error) {
	if c.LogLevel == "" {
		return fallback, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fallback, fmt.Errorf("config: log-level: %w", err)
	}
	return level, nil
}

// CheckVersion reports an error when the configured language version cannot
// be run by an interpreter implementing langVersion: the major versions must
// match and the required version must not be newer.
func (c *Config) CheckVersion(langVersion string) error {
	if c.Version == "" {
		return nil
	}
	want := canonical(c.Version)
	if !semver.IsValid(want) {
		return fmt.Errorf("config: version %q is not a valid semantic version", c.Version)
	}
	have := canonical(langVersion)
	if semver.Major(want) != semver.Major(have) || semver.Compare(want, have) > 0 {
		return fmt.Errorf("config: programs require language %s, interpreter implements %s", want, have)
	}
	return nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
