package server

import (
	"context"
	"log/slog"

	"cardadvisor/app/config"
	"cardadvisor/app/service/session"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

// Server is the presentation-layer boundary: it ships view-models and scroll
// intents as JSON and accepts submissions and raw scroll observations.
// Rendering stays on the other side of the wire.
type Server struct {
	cfg        *config.Config
	sessionSvc *session.Service
	app        *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:        do.MustInvoke[*config.Config](di),
		sessionSvc: do.MustInvoke[*session.Service](di),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	api := s.app.Group("/api")
	api.Post("/sessions", s.handleCreateSession)
	api.Get("/sessions/:id/view", s.handleView)
	api.Post("/sessions/:id/submit", s.handleSubmit)
	api.Post("/sessions/:id/scroll", s.handleScroll)

	return s, nil
}

func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()

		if err := s.app.Shutdown(); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	if err := s.app.Listen(s.cfg.Server.Addr); err != nil {
		slog.Error("Server stopped", "error", err)
	}
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
