package main

import (
	"log/slog"

	"github.com/JaimeStill/image-lab/internal/config"
	"github.com/JaimeStill/image-lab/internal/console"
	"github.com/JaimeStill/image-lab/internal/infrastructure"
	"github.com/JaimeStill/image-lab/internal/provider"
	"github.com/JaimeStill/image-lab/internal/remote"
	"github.com/JaimeStill/image-lab/internal/snapshot"
)

// Domain holds the systems that implement the console.
type Domain struct {
	Console  *console.Manager
	Remote   remote.System
	Provider *provider.Client
}

// NewDomain wires the console to its provider and stores.
func NewDomain(infra *infrastructure.Infrastructure, cfg *config.Config) *Domain {
	rs := remote.Disabled()
	if cfg.Remote.Enabled {
		rs = remote.New(
			&cfg.Remote,
			remote.NewTable(infra.Database.Connection()),
			infra.Storage,
			cfg.Storage.MaxUploadSizeBytes(),
			infra.Logger,
		)
	}

	client := provider.New(&cfg.Provider, provider.GenAI, nil, infra.Logger)

	manager := console.New(&cfg.Console, console.Deps{
		Generator:   client,
		Remote:      rs,
		Snapshot:    snapshot.New(infra.Local, infra.Logger),
		Credentials: snapshot.NewCredentialStore(infra.Local, infra.Logger),
		Listener:    credentialPrompt{logger: infra.Logger},
	}, infra.Logger)

	return &Domain{
		Console:  manager,
		Remote:   rs,
		Provider: client,
	}
}

// credentialPrompt surfaces credential requests in the service log. HTTP
// clients observe the same state through GET /api/credential.
type credentialPrompt struct {
	logger *slog.Logger
}

func (p credentialPrompt) CredentialRequired() {
	p.logger.Warn("provider credential required", "route", "PUT /api/credential")
}
