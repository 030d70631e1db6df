package tictactoe

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Random is the source of randomness used by the easy computer player.
type Random interface {
	Intn(n int) int
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int {
	return rand.Intn(n) //nolint: gosec // it's ok
}

// RandomSelector picks a uniformly random empty cell.
type RandomSelector struct {
	random Random
}

// NewRandomSelector - a nil random falls back to the shared math/rand source.
func NewRandomSelector(random Random) *RandomSelector {
	if random == nil {
		random = globalRandom{}
	}

	return &RandomSelector{random: random}
}

func (that *RandomSelector) SelectMove(board entity.Board, _ entity.Mark) (int, error) {
	availableCells := board.EmptyIndices()
	if len(availableCells) == 0 {
		return 0, fmt.Errorf("random move: %w", apperror.ErrNoLegalMoves)
	}

	return availableCells[that.random.Intn(len(availableCells))], nil
}
