package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	mockedRest "github.com/rocketscienceinc/tictactoe-engine/mocks/rest"
)

func newTestRouter(t *testing.T) (*mockedRest.MockgameManager, http.Handler) {
	t.Helper()

	games := mockedRest.NewMockgameManager(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return games, NewRouter(logger, games)
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()

	var resp sessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return resp
}

func TestPing(t *testing.T) {
	_, router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestCreateSession(t *testing.T) {
	t.Run("Creates a session with the default computer mark", func(t *testing.T) {
		// Given: a manager that accepts an optimal game against an O computer
		games, router := newTestRouter(t)
		created := &entity.Session{ID: "s1", Config: entity.NewSessionConfig(entity.ModeVsOptimal), State: entity.StateInProgress}

		games.EXPECT().NewSession(mock.Anything, entity.SessionConfig{Mode: entity.ModeVsOptimal, ComputerMark: entity.PlayerO}).
			Return(created, nil).
			Once()

		// When: a client posts the mode
		rec := serve(router, http.MethodPost, "/api/sessions", `{"mode":"vs_optimal"}`)

		// Then: the session is returned
		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, "s1", resp.Session.ID)
		assert.Empty(t, resp.Error)
	})

	t.Run("Rejects an unknown mode", func(t *testing.T) {
		_, router := newTestRouter(t)

		rec := serve(router, http.MethodPost, "/api/sessions", `{"mode":"blitz"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec).Error, "unknown")
	})

	t.Run("Rejects a malformed body", func(t *testing.T) {
		_, router := newTestRouter(t)

		rec := serve(router, http.MethodPost, "/api/sessions", `{`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMakeTurn(t *testing.T) {
	t.Run("Returns the updated session", func(t *testing.T) {
		games, router := newTestRouter(t)
		updated := &entity.Session{ID: "s1", Board: entity.Board{4: entity.PlayerX}, Turn: entity.PlayerO}

		games.EXPECT().MakeTurn(mock.Anything, "s1", 4).Return(updated, nil).Once()

		rec := serve(router, http.MethodPost, "/api/sessions/s1/moves", `{"cell":4}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, updated.Board, decode(t, rec).Session.Board)
	})

	t.Run("Illegal move is a conflict and carries the session", func(t *testing.T) {
		// Given: the manager rejects the move on an occupied cell
		games, router := newTestRouter(t)
		unchanged := &entity.Session{ID: "s1", Board: entity.Board{4: entity.PlayerX}, Turn: entity.PlayerO}

		games.EXPECT().MakeTurn(mock.Anything, "s1", 4).
			Return(unchanged, fmt.Errorf("failed to make turn: %w: %w", apperror.ErrIllegalMove, apperror.ErrCellOccupied)).
			Once()

		// When: the client plays it anyway
		rec := serve(router, http.MethodPost, "/api/sessions/s1/moves", `{"cell":4}`)

		// Then: 409 with the unchanged board
		require.Equal(t, http.StatusConflict, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, unchanged.Board, resp.Session.Board)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("Out of range cell is a bad request", func(t *testing.T) {
		games, router := newTestRouter(t)

		games.EXPECT().MakeTurn(mock.Anything, "s1", 9).
			Return(&entity.Session{ID: "s1"}, apperror.ErrOutOfRange).
			Once()

		rec := serve(router, http.MethodPost, "/api/sessions/s1/moves", `{"cell":9}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing cell is a bad request", func(t *testing.T) {
		_, router := newTestRouter(t)

		rec := serve(router, http.MethodPost, "/api/sessions/s1/moves", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown session is not found", func(t *testing.T) {
		games, router := newTestRouter(t)

		games.EXPECT().MakeTurn(mock.Anything, "nope", 0).Return(nil, apperror.ErrSessionNotFound).Once()

		rec := serve(router, http.MethodPost, "/api/sessions/nope/moves", `{"cell":0}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	t.Run("Gets a session", func(t *testing.T) {
		games, router := newTestRouter(t)

		games.EXPECT().GetSession(mock.Anything, "s1").Return(&entity.Session{ID: "s1"}, nil).Once()

		rec := serve(router, http.MethodGet, "/api/sessions/s1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "s1", decode(t, rec).Session.ID)
	})

	t.Run("Resets into another mode", func(t *testing.T) {
		games, router := newTestRouter(t)

		games.EXPECT().Reset(mock.Anything, "s1", entity.ModeTwoPlayer).
			Return(&entity.Session{ID: "s1", Config: entity.NewSessionConfig(entity.ModeTwoPlayer)}, nil).
			Once()

		rec := serve(router, http.MethodPost, "/api/sessions/s1/reset", `{"mode":"two_player"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, entity.ModeTwoPlayer, decode(t, rec).Session.Config.Mode)
	})

	t.Run("Deletes a session", func(t *testing.T) {
		games, router := newTestRouter(t)

		games.EXPECT().EndSession(mock.Anything, "s1").Return(nil).Once()

		rec := serve(router, http.MethodDelete, "/api/sessions/s1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Hides unexpected errors", func(t *testing.T) {
		games, router := newTestRouter(t)

		games.EXPECT().GetSession(mock.Anything, "s1").Return(nil, errors.New("redis: connection refused")).Once()

		rec := serve(router, http.MethodGet, "/api/sessions/s1", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", decode(t, rec).Error)
	})
}
