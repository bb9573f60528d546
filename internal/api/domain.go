package api

import (
	"github.com/JaimeStill/colorbook/internal/books"
	"github.com/JaimeStill/colorbook/internal/config"
	"github.com/JaimeStill/colorbook/internal/generation"
	"github.com/JaimeStill/colorbook/internal/imagegen"
	"github.com/JaimeStill/colorbook/internal/runs"
	"github.com/JaimeStill/colorbook/internal/themes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Generation *generation.Orchestrator
	Publisher  *books.Publisher
	Runs       runs.System
	Themes     *themes.Service
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	runsSystem := runs.New(
		runtime.Database.Connection(),
		runtime.Database,
		runtime.Logger,
		runtime.Pagination,
	)

	images := imagegen.New(
		imagegen.Config{
			StandardModel:     cfg.Gemini.StandardModel,
			ElevatedModel:     cfg.Gemini.ElevatedModel,
			AspectRatio:       cfg.Gemini.AspectRatio,
			RequestTimeout:    cfg.Gemini.RequestTimeoutDuration(),
			RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
			Burst:             cfg.Gemini.Burst,
		},
		runtime.Clients,
		runtime.Logger,
	)

	orchestrator := generation.New(
		generation.Config{
			MaxPages:     cfg.Book.MaxPages,
			DefaultPages: cfg.Book.DefaultPages,
			DefaultTier:  imagegen.Tier(cfg.Book.DefaultTier),
		},
		runtime.Credentials,
		images,
		runtime.Lifecycle,
		runsSystem,
		runtime.Logger,
	)

	publisher := books.NewPublisher(
		books.Config{
			DocumentTTL:  cfg.Book.DocumentTTLDuration(),
			Export:       cfg.Book.Export,
			ExportPrefix: cfg.Book.ExportPrefix,
		},
		orchestrator,
		runtime.Storage,
		runsSystem,
		runtime.Logger,
	)

	themesService := themes.New(
		themes.Config{
			Model:          cfg.Gemini.TextModel,
			RequestTimeout: cfg.Gemini.RequestTimeoutDuration(),
		},
		runtime.Clients,
		runtime.Logger,
	)

	return &Domain{
		Generation: orchestrator,
		Publisher:  publisher,
		Runs:       runsSystem,
		Themes:     themesService,
	}
}
