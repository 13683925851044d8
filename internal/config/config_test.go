package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "eventsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func envWith(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", noEnv, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Zero(t, cfg.MaxConns)
	assert.Zero(t, cfg.AdminWritesPerMinute)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "dist"), cfg.DistDir)
	assert.Equal(t, filepath.Join(wd, "locales"), cfg.LocalesDir)
	assert.Equal(t, filepath.Join(wd, "config", "registrations.json"), cfg.RegistrationsPath)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, `
host: 127.0.0.1
port: 8081
dist_dir: `+filepath.Join(dir, "site")+`
locales_dir: `+filepath.Join(dir, "i18n")+`
config_dir: `+filepath.Join(dir, "state")+`
max_conns: 64
admin_writes_per_minute: 10
log:
  level: debug
  format: json
`)
	cfg, err := load(path, noEnv, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
	assert.Equal(t, filepath.Join(dir, "site"), cfg.DistDir)
	assert.Equal(t, filepath.Join(dir, "i18n"), cfg.LocalesDir)
	assert.Equal(t, filepath.Join(dir, "state", RegistrationsFile), cfg.RegistrationsPath)
	assert.Equal(t, 64, cfg.MaxConns)
	assert.Equal(t, 10, cfg.AdminWritesPerMinute)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes, "unset keys keep their defaults")
}

func TestPortPrecedence(t *testing.T) {
	path := writeTestConfig(t, "port: 4000\n")

	cfg, err := load(path, noEnv, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)

	cfg, err = load(path, envWith(map[string]string{PortEnv: "5000"}), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)

	cfg, err = load(path, envWith(map[string]string{PortEnv: "5000"}), Overrides{Port: 6000})
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)

	cfg, err = load(path, envWith(map[string]string{PortEnv: "  "}), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port, "blank APP_PORT is ignored")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad env port", env: map[string]string{PortEnv: "http"}},
		{name: "port out of range", yaml: "port: 70000\n"},
		{name: "negative max conns", yaml: "max_conns: -1\n"},
		{name: "zero body cap", yaml: "max_body_bytes: 0\n"},
		{name: "negative throttle", yaml: "admin_writes_per_minute: -5\n"},
		{name: "unknown level", yaml: "log:\n  level: loud\n"},
		{name: "unknown format", yaml: "log:\n  format: xml\n"},
		{name: "empty dist", yaml: "dist_dir: \"\"\n"},
		{name: "malformed yaml", yaml: "port: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = writeTestConfig(t, tt.yaml)
			}
			_, err := load(path, envWith(tt.env), Overrides{})
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), noEnv, Overrides{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
