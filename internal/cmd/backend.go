package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/config"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/logging"
	"github.com/sadopc/focusnest/internal/pgstore"
	"github.com/sadopc/focusnest/internal/store"
	"github.com/sadopc/focusnest/internal/tui"
)

// Backend is what both the SQLite and PostgreSQL stores provide.
type Backend interface {
	identity.UserStore
	identity.AttributeStore
	catalog.Source
	tui.SettingsStore
	SeedCatalog(ctx context.Context, l catalog.Listing) error
	Close() error
}

var (
	_ Backend = (*store.Store)(nil)
	_ Backend = (*pgstore.Store)(nil)
)

// openBackend uses PostgreSQL when a database URL is configured and the
// local SQLite file otherwise.
func openBackend(ctx context.Context, cfg config.Config) (Backend, error) {
	if cfg.DatabaseURL != "" {
		s, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// env is the resolved config, store and identity provider for one command.
type env struct {
	cfg      config.Config
	backend  Backend
	provider *identity.Provider
}

func (e *env) Close() error {
	return e.backend.Close()
}

// open loads config, sets up logging and opens the backend. Servers log
// JSON lines to stderr; interactive commands log to a file, if at all.
func (g *globals) open(ctx context.Context, server bool) (*env, error) {
	cfg, err := config.Load(g.configDir)
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
		cfg.DatabaseURL = ""
	}
	if g.debug {
		cfg.Debug = true
	}

	if server {
		logging.InitializeServer(os.Stderr, cfg.Debug)
	} else if err := logging.Initialize(cfg.Debug, cfg.DebugFile, cfg.MaxLogFiles); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	secret, err := cfg.Secret()
	if err != nil {
		return nil, err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logging.Logger.Debug("Backend opened", "postgres", cfg.DatabaseURL != "", "db_path", cfg.DBPath)

	return &env{
		cfg:      cfg,
		backend:  b,
		provider: identity.NewProvider(b, secret, cfg.TokenTTL),
	}, nil
}

// currentIdentity resolves the token saved by `focusnest login`.
func (e *env) currentIdentity(ctx context.Context) (identity.Identity, error) {
	token, err := e.cfg.LoadToken()
	if err != nil {
		return identity.Identity{}, err
	}
	ident, err := e.provider.Verify(ctx, token)
	if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrUserNotFound) {
		return identity.Identity{}, fmt.Errorf("session expired; run `focusnest login` (%w)", err)
	}
	if err != nil {
		return identity.Identity{}, fmt.Errorf("verify token: %w", err)
	}
	return ident, nil
}

// seedIfEmpty loads the sample catalog into a fresh database.
func seedIfEmpty(ctx context.Context, b Backend) error {
	courses, err := b.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	if len(courses) > 0 {
		return nil
	}
	logging.Logger.Info("Seeding empty catalog")
	return b.SeedCatalog(ctx, catalog.Seed())
}
