package project

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Find returns the config governing file. Starting at the file's directory it
// walks towards the filesystem root, stopping before the root itself, and
// accepts the first tsconfig.json that parses and lists file as a member.
// Configs that fail to parse are skipped as if absent. When nothing matches,
// the config at defaults (if non-empty and parseable) is used without a
// membership check. The second result is false when no config applies.
func Find(file, defaults string) (*Config, bool) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, false
	}
	member := Canonical(abs)

	for dir := filepath.Dir(abs); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				Logger().Debug("config not accessible", zap.String("path", candidate), zap.Error(err))
			}
			continue
		}
		cfg, err := Parse(candidate)
		if err != nil {
			Logger().Debug("skipping unparsable config", zap.String("path", candidate), zap.Error(err))
			continue
		}
		if cfg.Contains(member) {
			Logger().Debug("config found", zap.String("file", abs), zap.String("config", candidate))
			return cfg, true
		}
		Logger().Debug("config does not list file", zap.String("file", abs), zap.String("config", candidate))
	}

	if defaults == "" {
		return nil, false
	}
	cfg, err := Parse(defaults)
	if err != nil {
		Logger().Debug("default config unusable", zap.String("path", defaults), zap.Error(err))
		return nil, false
	}
	return cfg, true
}
