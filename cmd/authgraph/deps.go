package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
	"github.com/opengovtools/authgraph/internal/domain/services"
	"github.com/opengovtools/authgraph/internal/infrastructure/config"
	"github.com/opengovtools/authgraph/internal/infrastructure/graphdb/postgres"
	"github.com/opengovtools/authgraph/internal/infrastructure/graphdb/sqlite"
	"github.com/opengovtools/authgraph/internal/infrastructure/seedfile"
)

// Deps holds high-level dependencies for commands.
type Deps struct {
	Config       *config.Config
	Log          *logrus.Logger
	Store        ports.GraphStore
	Permissions  *services.PermissionService
	Capabilities *services.CapabilityService
	Positions    *services.PositionService
	Seeder       *services.SeedService
	Ontology     *services.OntologyService
}

// withDeps loads config, opens the configured storage backend, builds the
// services, and calls the provided function. It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cfg, err := config.Load(globalConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	permissions := services.NewPermissionService(store)
	capabilities := services.NewCapabilityService(store, permissions)
	if cfg.Auth.BypassPermission != "" {
		capabilities.WithBypassPermission(cfg.Auth.BypassPermission)
	}

	deps := &Deps{
		Config:       cfg,
		Log:          log,
		Store:        store,
		Permissions:  permissions,
		Capabilities: capabilities,
		Positions:    services.NewPositionService(store),
		Seeder:       services.NewSeedService(store, log),
		Ontology:     services.NewOntologyService(store),
	}

	return fn(deps)
}

// withStore provides direct store access for commands that bypass the services.
func withStore(ctx context.Context, fn func(ports.GraphStore) error) error {
	return withDeps(ctx, func(d *Deps) error {
		return fn(d.Store)
	})
}

// openStore opens the graph store selected by the config.
func openStore(ctx context.Context, cfg *config.Config) (ports.GraphStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.NewRepository(cfg.Storage.SQLite)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite repository: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewRepository(ctx, cfg.Storage.Postgres)
		if err != nil {
			return nil, fmt.Errorf("creating postgres repository: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)
	return log, nil
}

// resolveEntity resolves an "entity_type:name" reference to a stored entity.
func resolveEntity(ctx context.Context, store ports.GraphStore, ref string) (*entities.Entity, error) {
	entityType, name, err := seedfile.ParseRef(ref)
	if err != nil {
		return nil, err
	}
	entity, err := store.FindEntityByTypeAndName(ctx, entityType, name)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("entity %s not found", ref)
	}
	return entity, nil
}

// resolveByName resolves a bare name within a fixed entity type.
func resolveByName(ctx context.Context, store ports.GraphStore, entityType, name string) (*entities.Entity, error) {
	entity, err := store.FindEntityByTypeAndName(ctx, entityType, name)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("%s %q not found", entityType, name)
	}
	return entity, nil
}
