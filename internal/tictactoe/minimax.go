package tictactoe

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Leaf scores do not depend on depth: a slow win is worth as much as a fast one.
const (
	winScore  = 10
	lossScore = -10
	drawScore = 0
)

// SearchStats describes one top-level search.
type SearchStats struct {
	Nodes    int
	MaxDepth int
	Value    int
}

type search struct {
	aiPlayer entity.Mark
	stats    SearchStats
}

// SelectOptimalMove - returns the best cell for aiPlayer, ties going to the
// lowest index.
func SelectOptimalMove(board entity.Board, aiPlayer entity.Mark) (int, error) {
	move, _, err := selectOptimalMove(board, aiPlayer)
	return move, err
}

func selectOptimalMove(board entity.Board, aiPlayer entity.Mark) (int, SearchStats, error) {
	if !aiPlayer.IsPlayer() {
		return 0, SearchStats{}, fmt.Errorf("%w: player %q", apperror.ErrInvalidState, aiPlayer)
	}

	if board.IsFull() {
		return 0, SearchStats{}, fmt.Errorf("optimal move: %w", apperror.ErrNoLegalMoves)
	}

	if status := Evaluate(board); status.IsTerminal() {
		return 0, SearchStats{}, fmt.Errorf("%w: game already decided: %s", apperror.ErrInvalidState, status)
	}

	s := &search{aiPlayer: aiPlayer}

	bestValue := math.MinInt
	bestMove := -1

	for _, cell := range board.EmptyIndices() {
		// board is a value, next is this branch's own copy
		next := board
		next[cell] = aiPlayer

		value := s.minimax(next, 1, false)
		if value > bestValue {
			bestValue = value
			bestMove = cell
		}
	}

	s.stats.Value = bestValue

	return bestMove, s.stats, nil
}

func (that *search) minimax(board entity.Board, depth int, isMaximizing bool) int {
	that.stats.Nodes++
	that.stats.MaxDepth = max(that.stats.MaxDepth, depth)

	switch status := Evaluate(board); {
	case status.IsWon() && status.Winner == that.aiPlayer:
		return winScore
	case status.IsWon():
		return lossScore
	case status.IsDraw():
		return drawScore
	}

	if isMaximizing {
		bestValue := math.MinInt
		for _, cell := range board.EmptyIndices() {
			next := board
			next[cell] = that.aiPlayer
			bestValue = max(bestValue, that.minimax(next, depth+1, false))
		}

		return bestValue
	}

	bestValue := math.MaxInt
	for _, cell := range board.EmptyIndices() {
		next := board
		next[cell] = that.aiPlayer.Opponent()
		bestValue = min(bestValue, that.minimax(next, depth+1, true))
	}

	return bestValue
}

// MinimaxSelector is the unbeatable computer player.
type MinimaxSelector struct {
	logger *slog.Logger
}

func NewMinimaxSelector(logger *slog.Logger) *MinimaxSelector {
	return &MinimaxSelector{
		logger: logger.With("component", "minimax"),
	}
}

func (that *MinimaxSelector) SelectMove(board entity.Board, player entity.Mark) (int, error) {
	move, stats, err := selectOptimalMove(board, player)
	if err != nil {
		return 0, err
	}

	that.logger.Debug("search finished",
		"player", player,
		"move", move,
		"value", stats.Value,
		"nodes", stats.Nodes,
		"max_depth", stats.MaxDepth,
	)

	return move, nil
}
