package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Mode selects who plays the second seat.
type Mode string

const (
	ModeTwoPlayer Mode = "two_player"
	ModeVsRandom  Mode = "vs_random"
	ModeVsOptimal Mode = "vs_optimal"
)

func ParseMode(s string) (Mode, error) {
	switch mode := Mode(s); mode {
	case ModeTwoPlayer, ModeVsRandom, ModeVsOptimal:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, s)
	}
}

// VsComputer reports whether one seat is taken by a move source.
func (that Mode) VsComputer() bool {
	return that == ModeVsRandom || that == ModeVsOptimal
}

// State is the lifecycle of a session controller.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

type SessionConfig struct {
	Mode         Mode `json:"mode"`
	ComputerMark Mark `json:"computer_mark,omitempty"`
}

// NewSessionConfig - X always opens and belongs to the human; the computer plays O.
func NewSessionConfig(mode Mode) SessionConfig {
	return SessionConfig{
		Mode:         mode,
		ComputerMark: PlayerO,
	}
}

func (that SessionConfig) Validate() error {
	if _, err := ParseMode(string(that.Mode)); err != nil {
		return err
	}

	if that.Mode.VsComputer() && that.ComputerMark != PlayerO {
		return fmt.Errorf("%w: computer mark %q", apperror.ErrInvalidState, that.ComputerMark)
	}

	return nil
}

// IsComputer reports whether mark is played by a move source in this config.
func (that SessionConfig) IsComputer(mark Mark) bool {
	return that.Mode.VsComputer() && that.ComputerMark == mark
}

// Session is the snapshot of one game handed to UIs and stored between moves.
type Session struct {
	ID     string        `json:"id"`
	Config SessionConfig `json:"config"`
	Board  Board         `json:"board"`
	Turn   Mark          `json:"turn"`
	State  State         `json:"state"`
	Status Status        `json:"status"`
}

func (that *Session) IsFinished() bool {
	return that.State == StateFinished
}

func (that *Session) IsInProgress() bool {
	return that.State == StateInProgress
}
