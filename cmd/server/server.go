package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/JaimeStill/image-lab/internal/config"
	"github.com/JaimeStill/image-lab/internal/infrastructure"
	"github.com/JaimeStill/image-lab/internal/server"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	infra  *infrastructure.Infrastructure
	domain *Domain
	http   server.System
	loaded atomic.Bool
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	domain := NewDomain(infra, cfg)

	s := &Server{
		infra:  infra,
		domain: domain,
	}

	router, err := buildRouter(s, cfg)
	if err != nil {
		return nil, err
	}

	handler := buildMiddleware(infra, cfg).Apply(router)
	s.http = server.New(&cfg.Server, handler, infra.Logger)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"remote", cfg.Remote.Enabled,
	)

	return s, nil
}

// Ready reports whether infrastructure is up and the collection has loaded.
func (s *Server) Ready() bool {
	return s.loaded.Load() && s.infra.Ready()
}

// Start begins all subsystems. The record collection loads in the background
// once infrastructure startup completes.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()

		if err := s.domain.Console.Load(s.infra.Lifecycle.Context()); err != nil {
			s.infra.Logger.Error("collection load failed", "error", err)
			return
		}

		s.loaded.Store(true)
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown drains in-flight generations and the pending snapshot write, then
// stops every subsystem within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.domain.Console.Close(ctx); err != nil {
		s.infra.Logger.Warn("console drain incomplete", "error", err)
	}

	return s.infra.Lifecycle.Shutdown(timeout)
}
