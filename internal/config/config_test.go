package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quantscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1e-3, cfg.Tolerance)
	assert.Zero(t, cfg.Epsilon)
	assert.Equal(t, 32<<20, cfg.MaxMessageBytes)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/qs/history.db
epsilon: 0.002
tolerance: 0.0005
strict_truth: true
addr: "0.0.0.0:6000"
metrics_addr: ":9100"
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/qs/history.db", cfg.DBPath)
	assert.Equal(t, 0.002, cfg.Epsilon)
	assert.Equal(t, 0.0005, cfg.Tolerance)
	assert.True(t, cfg.StrictTruth)
	assert.Equal(t, "0.0.0.0:6000", cfg.Addr)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadPartialYAMLKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "epsilon: 0.0005\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0005, cfg.Epsilon)
	assert.Equal(t, Default().Addr, cfg.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "epsilon: 0.1\naddr: \"127.0.0.1:7000\"\n")
	t.Setenv("QUANTSCORE_EPSILON", "0.004")
	t.Setenv("QUANTSCORE_DB", "env.db")
	t.Setenv("QUANTSCORE_ADDR", "127.0.0.1:8000")
	t.Setenv("QUANTSCORE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.004, cfg.Epsilon)
	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "negative epsilon", body: "epsilon: -0.1\n"},
		{name: "zero tolerance", body: "tolerance: 0\n"},
		{name: "bad level", body: "log:\n  level: loud\n"},
		{name: "bad format", body: "log:\n  format: xml\n"},
		{name: "bad addr", body: "addr: not-an-address\n"},
		{name: "malformed yaml", body: "epsilon: [\n"},
		{name: "epsilon of one", body: "epsilon: 1\n"},
		{name: "message limit below grpc default", body: "max_message_bytes: 1024\n"},
		{name: "bad env epsilon", body: "", env: map[string]string{"QUANTSCORE_EPSILON": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
