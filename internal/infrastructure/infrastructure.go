// Package infrastructure provides core service initialization for application startup.
// It assembles the shared systems (lifecycle, logging, database, storage) the
// console and its stores are built on.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/image-lab/internal/config"
	"github.com/JaimeStill/image-lab/internal/remote"
	"github.com/JaimeStill/image-lab/pkg/database"
	"github.com/JaimeStill/image-lab/pkg/lifecycle"
	"github.com/JaimeStill/image-lab/pkg/logging"
	"github.com/JaimeStill/image-lab/pkg/storage"
)

// Infrastructure holds the core systems required by the service.
// Database is nil when the remote store is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Local     storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	var db database.System
	if cfg.Remote.Enabled {
		var err error
		db, err = database.New(&cfg.Database, remote.Migrations(), logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
	}

	blobs, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	local, err := storage.New(&cfg.Local, logger.With("store", "local"))
	if err != nil {
		return nil, fmt.Errorf("local storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   blobs,
		Local:     local,
	}, nil
}

// Start registers every infrastructure system with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Local.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("local storage start failed: %w", err)
	}
	return nil
}

// Ready reports whether startup has completed and the database, if any, is usable.
func (i *Infrastructure) Ready() bool {
	if !i.Lifecycle.Ready() {
		return false
	}
	return i.Database == nil || i.Database.Ready() == nil
}
