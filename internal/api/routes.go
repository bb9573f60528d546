package api

import (
	"net/http"

	"github.com/JaimeStill/colorbook/internal/books"
	"github.com/JaimeStill/colorbook/internal/credentials"
	"github.com/JaimeStill/colorbook/internal/themes"
	"github.com/JaimeStill/colorbook/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	patterns := routes.Register(
		mux,
		credentials.NewHandler(runtime.Credentials, runtime.Logger, runtime.MaxBodySize).Routes(),
		books.NewHandler(domain.Generation, domain.Publisher, runtime.Logger, runtime.MaxBodySize).Routes(),
		domain.Runs.Handler().Routes(),
		themes.NewHandler(domain.Themes, runtime.Logger, runtime.MaxBodySize).Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
	runtime.Logger.Debug("routes registered", "count", len(patterns), "patterns", patterns)
}
