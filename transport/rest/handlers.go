package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type handlers struct {
	logger *slog.Logger
	games  gameManager
}

type newSessionRequest struct {
	Mode string `json:"mode"`
}

type resetRequest struct {
	Mode string `json:"mode"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type sessionResponse struct {
	Session *entity.Session `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		that.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	session, err := that.games.NewSession(r.Context(), entity.NewSessionConfig(mode))
	if err != nil {
		that.handleError(w, "createSession", session, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, sessionResponse{Session: session})
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.games.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.handleError(w, "getSession", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func (that *handlers) resetSession(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	mode, err := entity.ParseMode(req.Mode)
	if err != nil {
		that.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	session, err := that.games.Reset(r.Context(), chi.URLParam(r, "id"), mode)
	if err != nil {
		that.handleError(w, "resetSession", nil, err)
		return
	}

	that.writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	session, err := that.games.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.handleError(w, "makeTurn", session, err)
		return
	}

	that.writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func (that *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := that.games.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.handleError(w, "endSession", nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleError - maps domain errors onto status codes. A rejected move still
// carries the session so the client can redraw.
func (that *handlers) handleError(w http.ResponseWriter, method string, session *entity.Session, err error) {
	switch {
	case errors.Is(err, apperror.ErrOutOfRange), errors.Is(err, apperror.ErrUnknownMode):
		that.writeError(w, http.StatusBadRequest, err.Error(), session)
	case errors.Is(err, apperror.ErrIllegalMove):
		that.writeError(w, http.StatusConflict, err.Error(), session)
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeError(w, http.StatusInternalServerError, "Internal Server Error", nil)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, code int, message string, session *entity.Session) {
	that.writeJSON(w, code, sessionResponse{Session: session, Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
