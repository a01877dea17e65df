package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/photo"
	"github.com/rgoncalves/fieldsync/internal/flagx"
	"github.com/rgoncalves/fieldsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	BackendURL          string         `json:"backend_url"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`

	S3 struct {
		Region        string `json:"region"`
		Endpoint      string `json:"endpoint"`
		Bucket        string `json:"bucket"`
		AccessKey     string `json:"access_key"`
		SecretKey     string `json:"secret_key"`
		PublicBaseURL string `json:"public_base_url"`
	} `json:"s3"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}

	s3 := photo.S3Config{
		Region:        jc.S3.Region,
		BaseEndpoint:  jc.S3.Endpoint,
		Bucket:        jc.S3.Bucket,
		AccessKey:     jc.S3.AccessKey,
		SecretKey:     jc.S3.SecretKey,
		PublicBaseURL: jc.S3.PublicBaseURL,
	}
	if s3.Region == "" {
		s3.Region = cfg.S3.Region
	}
	if s3.Bucket == "" {
		s3.Bucket = cfg.S3.Bucket
	}
	cfg.S3 = s3
}
