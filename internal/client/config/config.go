package config

import (
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/photo"
)

// Config holds runtime settings for the field client.
//
// Fields:
//   - BackendURL: base URL of the backend REST API.
//   - DatabasePath: path of the local SQLite store.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - S3: object-storage settings for photo uploads.
type Config struct {
	BackendURL          string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	S3                  photo.S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080"
	c.DatabasePath = "fieldsync.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.S3 = photo.S3Config{
		Region: "us-east-1",
		Bucket: "medicao-photos",
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
