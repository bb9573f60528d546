package api

import (
	"github.com/JaimeStill/colorbook/internal/config"
	"github.com/JaimeStill/colorbook/internal/infrastructure"
	"github.com/JaimeStill/colorbook/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination  pagination.Config
	MaxBodySize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:   infra.Lifecycle,
			Logger:      infra.Logger.With("module", "api"),
			Database:    infra.Database,
			Storage:     infra.Storage,
			Credentials: infra.Credentials,
			Clients:     infra.Clients,
		},
		Pagination:  cfg.API.Pagination,
		MaxBodySize: cfg.API.MaxBodySizeBytes(),
	}
}
