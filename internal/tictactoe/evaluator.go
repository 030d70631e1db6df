package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// WinCombos lists rows top to bottom, columns left to right, then both
// diagonals. The order decides which line is reported when several match.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - returns the status of any board, live or hypothetical.
func Evaluate(board entity.Board) entity.Status {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.Won(a, combo)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return entity.InProgress()
	}

	return entity.Draw()
}
