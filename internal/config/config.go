// Package config loads tsload settings from tsload.toml, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"tsload/internal/buildpipeline"
)

// FileName is looked up in the start directory and its ancestors.
const FileName = "tsload.toml"

// DefaultAddr is the listen address of "tsload serve".
const DefaultAddr = "127.0.0.1:8080"

// Environment variables.
const (
	EnvCheck    = "TSLOAD_CHECK"
	EnvDefaults = "TSLOAD_DEFAULTS"
	EnvAddr     = "TSLOAD_ADDR"
	EnvRoot     = "TSLOAD_ROOT"
)

type Config struct {
	// Path of the tsload.toml that was read; empty when none was found.
	Path   string
	Loader buildpipeline.Options
	Serve  ServeConfig
}

type ServeConfig struct {
	Addr string `toml:"addr"`
	// Root is the directory whose files the dev server exposes.
	Root string `toml:"root"`
}

type fileConfig struct {
	Loader buildpipeline.Options `toml:"loader"`
	Serve  ServeConfig           `toml:"serve"`
}

// Find walks up from startDir to locate tsload.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load builds the configuration for startDir. Relative paths in tsload.toml
// are resolved against the file's directory, relative paths from the
// environment against startDir.
func Load(startDir string) (*Config, error) {
	if startDir == "" {
		startDir = "."
	}
	base, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	cfg := &Config{Serve: ServeConfig{Addr: DefaultAddr, Root: base}}

	path, ok, err := Find(base)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	env, err := readDotEnv(filepath.Join(base, ".env"))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env, base); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	dir := filepath.Dir(path)
	c.Path = path

	if meta.IsDefined("loader", "check") {
		c.Loader.Check = fc.Loader.Check
	}
	if meta.IsDefined("loader", "defaults") {
		if strings.TrimSpace(fc.Loader.Defaults) == "" {
			return fmt.Errorf("%s: [loader].defaults must not be empty", path)
		}
		c.Loader.Defaults = absFrom(dir, fc.Loader.Defaults)
	}
	if meta.IsDefined("serve", "addr") {
		c.Serve.Addr = fc.Serve.Addr
	}
	if meta.IsDefined("serve", "root") {
		c.Serve.Root = absFrom(dir, fc.Serve.Root)
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// applyEnv lets non-empty process variables win over .env entries.
func (c *Config) applyEnv(dotenv map[string]string, base string) error {
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if v := lookup(EnvCheck); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCheck, err)
		}
		c.Loader.Check = &b
	}
	if v := lookup(EnvDefaults); v != "" {
		c.Loader.Defaults = absFrom(base, v)
	}
	if v := lookup(EnvAddr); v != "" {
		c.Serve.Addr = v
	}
	if v := lookup(EnvRoot); v != "" {
		c.Serve.Root = absFrom(base, v)
	}
	return nil
}

func absFrom(dir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
