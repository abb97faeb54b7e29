package config

import (
	"flag"
	"os"
	"time"

	"lockbox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-b string   storage backend: file, sqlite, postgres or s3
//	-f string   vault file path (file and sqlite backends)
//	-d string   database DSN (postgres backend)
//	-t int      auto-lock timeout in seconds, 0 disables
//	-k int      PBKDF2 iterations for newly created records
//
// os.Args is filtered through flagx.FilterArgs so flags owned by other
// packages do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-f", "-d", "-t", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	backend := fs.String("b", string(cfg.Backend), "storage backend (file|sqlite|postgres|s3)")
	fs.StringVar(&cfg.VaultPath, "f", cfg.VaultPath, "vault file path")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	timeout := fs.Int("t", int(cfg.AutoLockTimeout.Seconds()), "auto-lock timeout (in seconds, 0 disables)")
	fs.IntVar(&cfg.KDFIterations, "k", cfg.KDFIterations, "PBKDF2 iterations")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Backend = Backend(*backend)
	cfg.AutoLockTimeout = time.Duration(*timeout) * time.Second
}
