package tictactoe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// fixedRandom always picks the same position, wrapped to the range.
type fixedRandom struct {
	pick int
}

func (that fixedRandom) Intn(n int) int {
	return that.pick % n
}

func TestRandomSelector_SelectMove(t *testing.T) {
	t.Run("Always returns an empty cell", func(t *testing.T) {
		// Given: a seeded source and a partially played board
		selector := NewRandomSelector(rand.New(rand.NewSource(42))) //nolint: gosec // test
		board := entity.Board{x, o, x, e, o, e, x, e, e}

		for range 100 {
			// When: selecting a move
			cell, err := selector.SelectMove(board, o)

			// Then: it is one of the empty cells
			require.NoError(t, err)
			assert.Contains(t, board.EmptyIndices(), cell)
		}
	})

	t.Run("Draws from the ascending empty set", func(t *testing.T) {
		// Given: a source that always picks the second candidate
		selector := NewRandomSelector(fixedRandom{pick: 1})
		board := entity.Board{x, e, e, o, e, e, e, e, e}

		// When: selecting a move
		cell, err := selector.SelectMove(board, x)

		// Then: the second empty index is chosen
		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Fails with ErrNoLegalMoves on a full board", func(t *testing.T) {
		// Given: a full board
		selector := NewRandomSelector(nil)
		board := entity.Board{o, x, o, o, x, x, x, o, x}

		// When: selecting a move
		_, err := selector.SelectMove(board, x)

		// Then: there is nothing to pick
		require.ErrorIs(t, err, apperror.ErrNoLegalMoves)
	})
}
