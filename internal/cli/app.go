// Package cli implements the interactive lockbox shell: a small REPL over
// the vault session manager with no-echo password prompts.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"lockbox/internal/config"
	"lockbox/internal/cryptox"
	"lockbox/internal/logging"
	"lockbox/internal/store"
	"lockbox/internal/vault"
)

type App struct {
	config  *config.Config
	manager *vault.Manager
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s store: %w", cfg.Backend, err)
	}

	codec := vault.NewCodecWithParams(vault.KDFParams{
		Iterations: cfg.KDFIterations,
		Hash:       cryptox.HashSHA256,
	})

	manager := vault.NewManager(st,
		vault.WithLogger(logger),
		vault.WithCodec(codec),
		vault.WithAutoLockTimeout(cfg.AutoLockTimeout),
	)

	app := &App{
		config:  cfg,
		manager: manager,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	manager.Subscribe(func(ev vault.Event) {
		if ev.Type == vault.EventVaultLocked && ev.Auto {
			fmt.Fprintln(app.out, "\nVault locked after inactivity. Type 'unlock' to continue.")
		}
	})

	return app, nil
}

// openStore picks the record store implementation for the configured backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return store.NewFileStore(cfg.VaultPath), nil
	case config.BackendSQLite:
		return store.OpenSQLiteStore(ctx, cfg.VaultPath)
	case config.BackendPostgres:
		return store.OpenPostgresStore(ctx, cfg.DatabaseDSN)
	case config.BackendS3:
		return store.NewS3Store(ctx, store.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			Key:          cfg.S3Key,
			BaseEndpoint: cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
	a.manager.Lock()
}

func (a *App) getStatus() string {
	if a.manager.Unlocked() {
		return "unlocked"
	}
	return "locked"
}
