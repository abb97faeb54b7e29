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

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"backend":           "sqlite",
		"vault_path":        "/tmp/vault.db",
		"auto_lock_timeout": "10m",
		"kdf_iterations":    200000,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, BackendSQLite, cfg.Backend)
		assert.Equal(t, "/tmp/vault.db", cfg.VaultPath)
		assert.Equal(t, 10*time.Minute, cfg.AutoLockTimeout)
		assert.Equal(t, 200000, cfg.KDFIterations)
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"vault_path": "/tmp/other.json",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "/tmp/other.json", cfg.VaultPath)
		assert.Equal(t, BackendFile, cfg.Backend)
		assert.Equal(t, 5*time.Minute, cfg.AutoLockTimeout)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			Backend:         BackendPostgres,
			DatabaseDSN:     "postgres://localhost/vault",
			AutoLockTimeout: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, BackendPostgres, cfg.Backend)
		assert.Equal(t, "postgres://localhost/vault", cfg.DatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.AutoLockTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
