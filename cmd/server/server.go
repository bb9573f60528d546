package main

import (
	"time"

	"github.com/JaimeStill/colorbook/internal/config"
	"github.com/JaimeStill/colorbook/internal/infrastructure"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	// Elevated-tier starts hold the request open until a key is selected.
	if cfg.Server.WriteTimeoutDuration() < cfg.Credentials.SelectionTimeoutDuration() {
		infra.Logger.Warn(
			"write timeout is shorter than credential selection timeout",
			"write_timeout", cfg.Server.WriteTimeout,
			"selection_timeout", cfg.Credentials.SelectionTimeout,
		)
	}

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"export", cfg.Book.Export,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	// Selected keys never outlive the process.
	s.infra.Lifecycle.OnShutdown(func() {
		<-s.infra.Lifecycle.Context().Done()
		s.infra.Credentials.Clear()
	})

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
