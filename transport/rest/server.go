package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"libdb.so/hserve"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type gameManager interface {
	NewSession(ctx context.Context, config entity.SessionConfig) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	Reset(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error
}

// NewRouter - wires the REST routes.
func NewRouter(logger *slog.Logger, games gameManager) http.Handler {
	h := &handlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.endSession)
			r.Post("/reset", h.resetSession)
			r.Post("/moves", h.makeTurn)
		})
	})

	return r
}

// Start - serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	if err := hserve.ListenAndServe(ctx, ":"+port, handler); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
