package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tui"
)

var (
	mode     = string(entity.ModeVsOptimal)
	logFile  = ""
	logLevel = "info"
)

func init() {
	pflag.StringVarP(&mode, "mode", "m", mode, "game mode: two_player, vs_random or vs_optimal")
	pflag.StringVar(&logFile, "log-file", logFile, "write JSON logs to this file")
	pflag.StringVar(&logLevel, "log-level", logLevel, "log level: debug or info")
	pflag.Parse()
}

func main() {
	os.Exit(run())
}

func run() int {
	logger, closeLog, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		return 1
	}
	defer closeLog()

	config, err := sessionConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	model, err := tui.New(logger, config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if _, err = tea.NewProgram(model).Run(); err != nil {
		logger.Error("tui failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}

func sessionConfig() (entity.SessionConfig, error) {
	parsedMode, err := entity.ParseMode(mode)
	if err != nil {
		return entity.SessionConfig{}, fmt.Errorf("invalid --mode: %w", err)
	}

	return entity.NewSessionConfig(parsedMode), nil
}

// initLogger - the terminal belongs to the UI, so logs go to a file or nowhere.
func initLogger() (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	var out io.Writer = io.Discard
	closeLog := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}

		out = f
		closeLog = func() { _ = f.Close() }
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closeLog, nil
}
