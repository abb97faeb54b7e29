package config

import (
	"encoding/json"
	"os"

	"lockbox/internal/flagx"
	"lockbox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the file can spell the auto-lock timeout either as a
// string like "5m" or as integer nanoseconds. Absent fields leave the
// corresponding Config values untouched.
type JsonConfig struct {
	Backend     string `json:"backend"`
	VaultPath   string `json:"vault_path"`
	DatabaseDSN string `json:"database_dsn"`

	S3Region    string `json:"s3_region"`
	S3Bucket    string `json:"s3_bucket"`
	S3Key       string `json:"s3_key"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`

	AutoLockTimeout timex.Duration `json:"auto_lock_timeout"`
	KDFIterations   int            `json:"kdf_iterations"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c or -config flags. With no such flag the function is a no-op. Read and
// unmarshal errors panic; configuration happens before anything else runs.
func parseJson(cfg *Config) {
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

	if jc.Backend != "" {
		cfg.Backend = Backend(jc.Backend)
	}
	if jc.VaultPath != "" {
		cfg.VaultPath = jc.VaultPath
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Key != "" {
		cfg.S3Key = jc.S3Key
	}
	if jc.S3Endpoint != "" {
		cfg.S3Endpoint = jc.S3Endpoint
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.AutoLockTimeout.Duration != 0 {
		cfg.AutoLockTimeout = jc.AutoLockTimeout.Duration
	}
	if jc.KDFIterations != 0 {
		cfg.KDFIterations = jc.KDFIterations
	}
}
