package main

import (
	"net/http"

	"github.com/JaimeStill/image-lab/internal/api"
	"github.com/JaimeStill/image-lab/internal/config"
	"github.com/JaimeStill/image-lab/pkg/routes"
)

// buildRouter registers every API group and returns the composed handler.
func buildRouter(s *Server, cfg *config.Config) (http.Handler, error) {
	handler, err := api.NewHandler(
		s.domain.Console,
		s.infra.Storage,
		cfg.Remote.Folder,
		s.Ready,
		cfg.Pagination,
		cfg.Server.MaxBodyBytes(),
		s.infra.Logger,
	)
	if err != nil {
		return nil, err
	}

	r := routes.New(s.infra.Logger)
	for _, group := range handler.Routes() {
		r.RegisterGroup(group)
	}

	return r.Build(), nil
}
