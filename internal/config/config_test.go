package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvCheck, EnvDefaults, EnvAddr, EnvRoot} {
		t.Setenv(k, "")
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadWithoutFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Nil(t, cfg.Loader.Check)
	assert.True(t, cfg.Loader.CheckEnabled())
	assert.Empty(t, cfg.Loader.Defaults)
	assert.Equal(t, DefaultAddr, cfg.Serve.Addr)
	assert.Equal(t, dir, cfg.Serve.Root)
}

func TestLoadFromAncestorToml(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, FileName), `
[loader]
check = false
defaults = "config/tsconfig.json"

[serve]
addr = ":9000"
root = "public"
`)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	cfg, err := Load(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), cfg.Path)
	require.NotNil(t, cfg.Loader.Check)
	assert.False(t, *cfg.Loader.Check)
	assert.Equal(t, filepath.Join(root, "config", "tsconfig.json"), cfg.Loader.Defaults)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.Equal(t, filepath.Join(root, "public"), cfg.Serve.Root)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, FileName), "[loader]\ncheck = true\nwatch = true\n")

	_, err := Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader.watch")
}

func TestLoadRejectsEmptyDefaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, FileName), "[loader]\ndefaults = \" \"\n")

	_, err := Load(root)
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, FileName), "[loader]\ncheck = false\n")
	write(t, filepath.Join(root, ".env"), "TSLOAD_CHECK=true\nTSLOAD_DEFAULTS=base.json\nTSLOAD_ADDR=:7000\n")
	t.Setenv(EnvAddr, ":7100")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.True(t, cfg.Loader.CheckEnabled())
	assert.Equal(t, filepath.Join(root, "base.json"), cfg.Loader.Defaults)
	assert.Equal(t, ":7100", cfg.Serve.Addr, "process environment beats .env")
}

func TestInvalidCheckValue(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCheck, "sometimes")

	_, err := Load(t.TempDir())
	require.Error(t, err)
}
