package tui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var modeKeys = map[string]entity.Mode{
	"t": entity.ModeTwoPlayer,
	"e": entity.ModeVsRandom,
	"h": entity.ModeVsOptimal,
}

var modeTitles = map[entity.Mode]string{
	entity.ModeTwoPlayer: "two players",
	entity.ModeVsRandom:  "vs computer (easy)",
	entity.ModeVsOptimal: "vs computer (hard)",
}

// Model is a bubbletea model playing one local game.
type Model struct {
	controller *tictactoe.GameController
	message    string
}

// New - starts a game in config. opts are passed to the controller.
func New(logger *slog.Logger, config entity.SessionConfig, opts ...tictactoe.Option) (Model, error) {
	controller := tictactoe.NewGameController(logger, opts...)
	if err := controller.Reset(config); err != nil {
		return Model{}, fmt.Errorf("failed to start game: %w", err)
	}

	return Model{controller: controller}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := keyMsg.String()
	m.message = ""

	switch {
	case key == "q" || key == "ctrl+c":
		return m, tea.Quit
	case key == "r":
		if err := m.controller.Reset(m.controller.Config()); err != nil {
			m.message = err.Error()
		}
	case modeKeys[key] != "":
		if err := m.controller.SwitchMode(modeKeys[key]); err != nil {
			m.message = err.Error()
		}
	case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
		if _, err := m.controller.ApplyHumanMove(int(key[0] - '1')); err != nil {
			m.message = err.Error()
		}
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	config := m.controller.Config()
	fmt.Fprintf(&b, "Tic-tac-toe, %s\n\n", modeTitles[config.Mode])
	b.WriteString(m.controller.CurrentBoard().String())
	b.WriteString("\n\n")

	status := m.controller.CurrentStatus()
	if status.IsTerminal() {
		fmt.Fprintf(&b, "Game over: %s. Press r to play again.\n", status.String())
	} else {
		fmt.Fprintf(&b, "%s to move\n", m.controller.CurrentPlayer())
	}

	if m.message != "" {
		fmt.Fprintf(&b, "! %s\n", m.message)
	}

	b.WriteString("\n1-9 play  r reset  t two players  e easy  h hard  q quit\n")

	return b.String()
}

// Board - exposes the board for callers embedding the model.
func (m Model) Board() entity.Board {
	return m.controller.CurrentBoard()
}

func (m Model) Status() entity.Status {
	return m.controller.CurrentStatus()
}
