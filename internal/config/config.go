// Package config assembles runtime settings for the lockbox CLI from
// defaults, an optional JSON file and command-line flags, in that order.
package config

import (
	"os"
	"path/filepath"
	"time"

	"lockbox/internal/cryptox"
)

// Backend selects where the encrypted vault record is persisted.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendS3       Backend = "s3"
)

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendFile, BackendSQLite, BackendPostgres, BackendS3:
		return true
	}
	return false
}

// Config holds runtime settings for the lockbox CLI.
//
// VaultPath is used by the file and sqlite backends, DatabaseDSN by the
// postgres backend and the S3* fields by the s3 backend. AutoLockTimeout
// and KDFIterations tune the session manager and codec.
type Config struct {
	Backend     Backend
	VaultPath   string
	DatabaseDSN string

	S3Region    string
	S3Bucket    string
	S3Key       string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	AutoLockTimeout time.Duration
	KDFIterations   int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Backend = BackendFile
	c.VaultPath = defaultVaultPath()
	c.S3Key = "vault.json"
	c.AutoLockTimeout = 5 * time.Minute
	c.KDFIterations = cryptox.DefaultIterations
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

func defaultVaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vault.json"
	}
	return filepath.Join(home, ".lockbox", "vault.json")
}
