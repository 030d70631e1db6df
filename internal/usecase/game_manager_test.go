package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	mockedUseCase "github.com/rocketscienceinc/tictactoe-engine/mocks/usecase"
)

var errRedisDown = errors.New("redis down")

type firstCell struct{}

func (firstCell) Intn(int) int {
	return 0
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ongoingSession(id string, mode entity.Mode) *entity.Session {
	return &entity.Session{
		ID:     id,
		Config: entity.NewSessionConfig(mode),
		Turn:   entity.PlayerX,
		State:  entity.StateInProgress,
		Status: entity.InProgress(),
	}
}

func TestGameManager_NewSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates and stores a fresh session", func(t *testing.T) {
		// Given: a repository accepting any session
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		mockSessionRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: a new optimal game is requested
		session, err := manager.NewSession(ctx, entity.NewSessionConfig(entity.ModeVsOptimal))

		// Then: an empty in-progress game with X to move is returned
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, entity.StateInProgress, session.State)
		assert.Equal(t, entity.PlayerX, session.Turn)
		assert.Equal(t, entity.Board{}, session.Board)
	})

	t.Run("Returns error when the session can't be stored", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		mockSessionRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(errRedisDown).
			Once()

		session, err := manager.NewSession(ctx, entity.NewSessionConfig(entity.ModeTwoPlayer))

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, session)
	})

	t.Run("Rejects an unknown mode without touching storage", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		_, err := manager.NewSession(ctx, entity.SessionConfig{Mode: "blitz"})

		require.ErrorIs(t, err, apperror.ErrUnknownMode)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies the human move and the computer answer", func(t *testing.T) {
		// Given: a stored game against a random computer that picks the first free cell
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo,
			tictactoe.WithMoveSource(entity.ModeVsRandom, tictactoe.NewRandomSelector(firstCell{})))

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "s1").
			Return(ongoingSession("s1", entity.ModeVsRandom), nil).
			Once()

		var saved *entity.Session
		mockSessionRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Run(func(_ context.Context, session *entity.Session) {
				saved = session
			}).
			Return(nil).
			Once()

		// When: the human plays the center
		session, err := manager.MakeTurn(ctx, "s1", 4)

		// Then: both moves are stored
		require.NoError(t, err)
		expectedBoard := entity.Board{0: entity.PlayerO, 4: entity.PlayerX}
		assert.Equal(t, expectedBoard, session.Board)
		assert.Equal(t, entity.PlayerX, session.Turn)
		assert.Equal(t, session, saved)
	})

	t.Run("Rejected move returns the unchanged session and stores nothing", func(t *testing.T) {
		// Given: a two player game where X holds the center
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		stored := ongoingSession("s2", entity.ModeTwoPlayer)
		stored.Board[4] = entity.PlayerX
		stored.Turn = entity.PlayerO

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "s2").
			Return(stored, nil).
			Once()

		// When: O tries the center
		session, err := manager.MakeTurn(ctx, "s2", 4)

		// Then: the move is illegal and the session is as before
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, stored.Board, session.Board)
		assert.Equal(t, entity.PlayerO, session.Turn)
	})

	t.Run("Returns ErrSessionNotFound for unknown sessions", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "nope").
			Return((*entity.Session)(nil), apperror.ErrSessionNotFound).
			Once()

		session, err := manager.MakeTurn(ctx, "nope", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Nil(t, session)
	})

	t.Run("Rejects a corrupted snapshot", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		corrupted := ongoingSession("s3", entity.ModeTwoPlayer)
		corrupted.Board = entity.Board{entity.PlayerX, entity.PlayerX, entity.PlayerX}

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "s3").
			Return(corrupted, nil).
			Once()

		_, err := manager.MakeTurn(ctx, "s3", 5)

		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("Concurrent moves on one session are serialised", func(t *testing.T) {
		// Given: an in-memory stand-in for the repository
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		var mu sync.Mutex
		current := ongoingSession("s4", entity.ModeTwoPlayer)

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "s4").
			RunAndReturn(func(context.Context, string) (*entity.Session, error) {
				mu.Lock()
				defer mu.Unlock()
				copied := *current
				return &copied, nil
			})
		mockSessionRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			RunAndReturn(func(_ context.Context, session *entity.Session) error {
				mu.Lock()
				defer mu.Unlock()
				current = session
				return nil
			})

		// When: two players hit different cells at the same time
		var wg sync.WaitGroup
		for _, cell := range []int{0, 8} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := manager.MakeTurn(ctx, "s4", cell)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		// Then: both moves landed, one X and one O
		assert.Equal(t, 2, current.Board.Played())
		assert.ElementsMatch(t,
			[]entity.Mark{entity.PlayerX, entity.PlayerO},
			[]entity.Mark{current.Board[0], current.Board[8]})
		assert.Equal(t, entity.PlayerX, current.Turn)
	})
}

func TestGameManager_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Switching mode discards the game", func(t *testing.T) {
		// Given: a two player game in progress
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		stored := ongoingSession("s5", entity.ModeTwoPlayer)
		stored.Board[4] = entity.PlayerX
		stored.Turn = entity.PlayerO

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "s5").
			Return(stored, nil).
			Once()
		mockSessionRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: switching to the random computer
		session, err := manager.Reset(ctx, "s5", entity.ModeVsRandom)

		// Then: a fresh game in the new mode is stored
		require.NoError(t, err)
		assert.Equal(t, entity.ModeVsRandom, session.Config.Mode)
		assert.Equal(t, entity.Board{}, session.Board)
		assert.Equal(t, entity.PlayerX, session.Turn)
		assert.Equal(t, entity.StateInProgress, session.State)
	})

	t.Run("Returns error when the session is missing", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		mockSessionRepo.EXPECT().
			GetByID(mock.Anything, "gone").
			Return((*entity.Session)(nil), apperror.ErrSessionNotFound).
			Once()

		_, err := manager.Reset(ctx, "gone", entity.ModeTwoPlayer)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestGameManager_EndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the session", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		mockSessionRepo.EXPECT().
			DeleteByID(mock.Anything, "s6").
			Return(nil).
			Once()

		require.NoError(t, manager.EndSession(ctx, "s6"))
	})

	t.Run("Wraps repository errors", func(t *testing.T) {
		mockSessionRepo := mockedUseCase.NewMocksessionRepoDep(t)
		manager := NewGameManager(newTestLogger(), mockSessionRepo)

		mockSessionRepo.EXPECT().
			DeleteByID(mock.Anything, "s7").
			Return(apperror.ErrSessionNotFound).
			Once()

		err := manager.EndSession(ctx, "s7")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
