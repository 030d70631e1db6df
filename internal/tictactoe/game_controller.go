package tictactoe

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// MoveSource chooses the computer's cell for player on board.
type MoveSource interface {
	SelectMove(board entity.Board, player entity.Mark) (int, error)
}

// GameController owns the board and turn order of a single game. It is not
// safe for concurrent use.
type GameController struct {
	logger  *slog.Logger
	sources map[entity.Mode]MoveSource

	config entity.SessionConfig
	board  entity.Board
	turn   entity.Mark
	state  entity.State
	status entity.Status
}

type Option func(*GameController)

// WithMoveSource - overrides the computer player used in mode.
func WithMoveSource(mode entity.Mode, source MoveSource) Option {
	return func(that *GameController) {
		that.sources[mode] = source
	}
}

// NewGameController - returns an idle controller. Call Reset to start a game.
func NewGameController(logger *slog.Logger, opts ...Option) *GameController {
	log := logger.With("component", "game_controller")

	controller := &GameController{
		logger: log,
		sources: map[entity.Mode]MoveSource{
			entity.ModeVsRandom:  NewRandomSelector(nil),
			entity.ModeVsOptimal: NewMinimaxSelector(logger),
		},
		state: entity.StateIdle,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// RestoreGameController - rebuilds a controller from a stored snapshot. The
// status is always recomputed from the board.
func RestoreGameController(logger *slog.Logger, session *entity.Session, opts ...Option) (*GameController, error) {
	controller := NewGameController(logger, opts...)

	if session.State == entity.StateIdle {
		return controller, nil
	}

	if err := controller.checkConfig(session.Config); err != nil {
		return nil, err
	}

	if err := session.Board.Validate(); err != nil {
		return nil, err
	}

	status := Evaluate(session.Board)

	switch {
	case session.State == entity.StateFinished && !status.IsTerminal():
		return nil, fmt.Errorf("%w: finished session with an open board", apperror.ErrInvalidState)
	case session.State == entity.StateInProgress && status.IsTerminal():
		return nil, fmt.Errorf("%w: session in progress on a decided board", apperror.ErrInvalidState)
	case session.State == entity.StateInProgress && !session.Turn.IsPlayer():
		return nil, fmt.Errorf("%w: turn %q", apperror.ErrInvalidState, session.Turn)
	case session.State == entity.StateInProgress && session.Config.IsComputer(session.Turn):
		// the computer always answers within the human's move
		return nil, fmt.Errorf("%w: computer %q holds the turn", apperror.ErrInvalidState, session.Turn)
	case session.State != entity.StateInProgress && session.State != entity.StateFinished:
		return nil, fmt.Errorf("%w: state %q", apperror.ErrInvalidState, session.State)
	}

	controller.config = session.Config
	controller.board = session.Board
	controller.turn = session.Turn
	controller.state = session.State
	controller.status = status

	return controller, nil
}

// Reset - starts a new game from any state: empty board, X to move.
func (that *GameController) Reset(config entity.SessionConfig) error {
	if err := that.checkConfig(config); err != nil {
		return err
	}

	that.config = config
	that.board = entity.Board{}
	that.turn = entity.PlayerX
	that.state = entity.StateInProgress
	that.status = entity.InProgress()

	that.logger.Debug("game reset", "mode", config.Mode)

	return nil
}

// SwitchMode - changing the mode always discards the current game.
func (that *GameController) SwitchMode(mode entity.Mode) error {
	return that.Reset(entity.NewSessionConfig(mode))
}

// ApplyMove - plays index for the current player, then lets the computer answer.
// Rejected moves leave the game untouched.
func (that *GameController) ApplyMove(index int) (entity.Status, error) {
	if err := that.confirmInProgress(); err != nil {
		return that.status, err
	}

	if err := that.place(index); err != nil {
		return that.status, err
	}

	that.playComputer()

	return that.status, nil
}

// ApplyHumanMove - the entry point for UI input. The computer answers inside
// the same call, so the human always holds the turn between calls.
func (that *GameController) ApplyHumanMove(index int) (entity.Status, error) {
	return that.ApplyMove(index)
}

func (that *GameController) CurrentBoard() entity.Board {
	return that.board
}

func (that *GameController) CurrentStatus() entity.Status {
	return that.status
}

func (that *GameController) CurrentPlayer() entity.Mark {
	return that.turn
}

func (that *GameController) State() entity.State {
	return that.state
}

func (that *GameController) Config() entity.SessionConfig {
	return that.config
}

// Snapshot - copies the game into a session value.
func (that *GameController) Snapshot(id string) *entity.Session {
	return &entity.Session{
		ID:     id,
		Config: that.config,
		Board:  that.board,
		Turn:   that.turn,
		State:  that.state,
		Status: that.status,
	}
}

func (that *GameController) confirmInProgress() error {
	switch that.state {
	case entity.StateInProgress:
		return nil
	case entity.StateFinished:
		return fmt.Errorf("%w: %w", apperror.ErrIllegalMove, apperror.ErrGameFinished)
	default:
		return fmt.Errorf("%w: %w", apperror.ErrIllegalMove, apperror.ErrGameIsNotStarted)
	}
}

// place - puts the current mark on index and moves the game forward.
func (that *GameController) place(index int) error {
	player := that.turn

	if err := that.board.Set(index, player); err != nil {
		return err
	}

	that.status = Evaluate(that.board)

	if that.status.IsTerminal() {
		that.state = entity.StateFinished
		that.logger.Info("game finished", "status", that.status.String(), "last_cell", index)

		return nil
	}

	that.turn = player.Opponent()
	that.logger.Debug("move applied", "player", player, "cell", index)

	return nil
}

// playComputer - lets the configured move source play while it holds the turn.
func (that *GameController) playComputer() {
	log := that.logger.With("method", "playComputer")

	for that.state == entity.StateInProgress && that.config.IsComputer(that.turn) {
		source := that.sources[that.config.Mode]

		cell, err := source.SelectMove(that.board, that.turn)
		if err == nil {
			err = that.place(cell)
		}

		if err != nil {
			// a failing move source is a defect; skip its turn instead of killing the game
			log.Error("computer failed to move, turn skipped", "player", that.turn, "error", err)
			that.turn = that.turn.Opponent()

			return
		}
	}
}

func (that *GameController) checkConfig(config entity.SessionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if !config.Mode.VsComputer() {
		return nil
	}

	if _, ok := that.sources[config.Mode]; !ok {
		return fmt.Errorf("%w: no move source for %s", apperror.ErrUnknownMode, config.Mode)
	}

	return nil
}
