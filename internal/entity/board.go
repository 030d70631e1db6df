package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Mark is the content of a single cell: empty or one of the two players.
type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

// BoardSize is the number of cells on a 3x3 grid.
const BoardSize = 9

// IsPlayer reports whether the mark belongs to a player.
func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player's mark. EmptyCell has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// ParseMark accepts "X" or "O" in any case.
func ParseMark(s string) (Mark, error) {
	mark := Mark(strings.ToUpper(strings.TrimSpace(s)))
	if !mark.IsPlayer() {
		return EmptyCell, fmt.Errorf("%w: mark %q", apperror.ErrInvalidState, s)
	}

	return mark, nil
}

// Board is the 3x3 grid, row-major: index 0 is top-left, index 8 bottom-right.
type Board [BoardSize]Mark

// Get - returns the mark stored at index.
func (that Board) Get(index int) (Mark, error) {
	if err := checkIndex(index); err != nil {
		return EmptyCell, err
	}

	return that[index], nil
}

// Set - places mark at index. Occupied cells are never overwritten.
func (that *Board) Set(index int, mark Mark) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: mark %q", apperror.ErrInvalidState, mark)
	}

	if that[index] != EmptyCell {
		return fmt.Errorf("%w: %w: cell %d", apperror.ErrIllegalMove, apperror.ErrCellOccupied, index)
	}

	that[index] = mark

	return nil
}

// EmptyIndices - returns the indices of all empty cells in ascending order.
func (that Board) EmptyIndices() []int {
	indices := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			indices = append(indices, i)
		}
	}

	return indices
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Validate - every cell must be empty, X or O.
func (that Board) Validate() error {
	for i, cell := range that {
		if cell != EmptyCell && !cell.IsPlayer() {
			return fmt.Errorf("%w: cell %d holds %q", apperror.ErrInvalidState, i, cell)
		}
	}

	return nil
}

// Played - returns the number of non-empty cells.
func (that Board) Played() int {
	played := 0
	for _, cell := range that {
		if cell != EmptyCell {
			played++
		}
	}

	return played
}

func (that Board) String() string {
	var sb strings.Builder

	for row := range 3 {
		if row > 0 {
			sb.WriteString("\n---+---+---\n")
		}

		for col := range 3 {
			if col > 0 {
				sb.WriteString("|")
			}

			cell := that[row*3+col]
			if cell == EmptyCell {
				fmt.Fprintf(&sb, " %d ", row*3+col+1)
				continue
			}

			fmt.Fprintf(&sb, " %s ", cell)
		}
	}

	return sb.String()
}

func checkIndex(index int) error {
	if index < 0 || index >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, index)
	}

	return nil
}
