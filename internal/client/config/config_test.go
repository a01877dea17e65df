package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BackendURL)
	assert.Equal(t, "fieldsync.db", cfg.DatabasePath)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "medicao-photos", cfg.S3.Bucket)
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"backend_url":           "http://api.example:9000",
		"database_path":         "/var/lib/fieldsync.db",
		"online_check_interval": "10s",
		"s3": map[string]any{
			"endpoint":        "http://minio:9000",
			"bucket":          "photos",
			"access_key":      "ak",
			"secret_key":      "sk",
			"public_base_url": "https://cdn.example/photos",
		},
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://api.example:9000", cfg.BackendURL)
		assert.Equal(t, "/var/lib/fieldsync.db", cfg.DatabasePath)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, "http://minio:9000", cfg.S3.BaseEndpoint)
		assert.Equal(t, "photos", cfg.S3.Bucket)
		assert.Equal(t, "https://cdn.example/photos", cfg.S3.PublicBaseURL)
		// Unset S3 fields keep their defaults.
		assert.Equal(t, "us-east-1", cfg.S3.Region)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			BackendURL:          "http://defaults:1234",
			OnlineCheckInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "http://defaults:1234", cfg.BackendURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", "http://flagged:7070", "-d", "flag.db", "-i", "15"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://flagged:7070", cfg.BackendURL)
	assert.Equal(t, "flag.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"backend_url":           "http://json:9000",
		"online_check_interval": "10s",
	})

	os.Args = []string{"testbin", "-config", path, "-a", "http://flags-win:9000"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flags-win:9000", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}
