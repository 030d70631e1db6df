package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type sessionRepoDep interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager runs many independent sessions. Moves on one session are
// processed one at a time; different sessions do not block each other.
type GameManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepoDep

	controllerOpts []tictactoe.Option
	locks          *xsync.MapOf[string, *sync.Mutex]
}

func NewGameManager(logger *slog.Logger, sessionRepo sessionRepoDep, opts ...tictactoe.Option) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		sessionRepo: sessionRepo,

		controllerOpts: opts,
		locks:          xsync.NewMapOf[string, *sync.Mutex](),
	}
}

// NewSession - starts a game in a fresh session.
func (that *GameManager) NewSession(ctx context.Context, config entity.SessionConfig) (*entity.Session, error) {
	controller := tictactoe.NewGameController(that.logger, that.controllerOpts...)
	if err := controller.Reset(config); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	session := controller.Snapshot(pkg.GenerateSessionID())
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID, "mode", config.Mode)

	return session, nil
}

// Reset - restarts the session's game in mode. Switching modes always discards the game.
func (that *GameManager) Reset(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error) {
	unlock := that.lock(id)
	defer unlock()

	controller, err := that.loadController(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = controller.SwitchMode(mode); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	session := controller.Snapshot(id)
	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// MakeTurn - plays cell for the human. A rejected move returns the unchanged
// session together with the error.
func (that *GameManager) MakeTurn(ctx context.Context, id string, cell int) (*entity.Session, error) {
	log := that.logger.With("method", "MakeTurn", "sessionID", id)

	unlock := that.lock(id)
	defer unlock()

	controller, err := that.loadController(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err = controller.ApplyHumanMove(cell); err != nil {
		log.Debug("move rejected", "cell", cell, "error", err)
		return controller.Snapshot(id), fmt.Errorf("failed to make turn: %w", err)
	}

	session := controller.Snapshot(id)
	if err = that.updateSession(ctx, session); err != nil {
		return nil, err
	}

	if session.IsFinished() {
		log.Info("game finished", "status", session.Status.String())
	}

	return session, nil
}

func (that *GameManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// EndSession - drops the session and its lock.
func (that *GameManager) EndSession(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer func() {
		unlock()
		that.locks.Delete(id)
	}()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "sessionID", id)

	return nil
}

func (that *GameManager) loadController(ctx context.Context, id string) (*tictactoe.GameController, error) {
	session, err := that.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	controller, err := tictactoe.RestoreGameController(that.logger, session, that.controllerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	return controller, nil
}

func (that *GameManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *GameManager) lock(id string) func() {
	mu, _ := that.locks.LoadOrCompute(id, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()

	return mu.Unlock
}
