package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	actionGameNew   = "game:new"
	actionGameReset = "game:reset"
	actionGameTurn  = "game:turn"
	actionGameState = "game:state"
	actionGameLeave = "game:leave"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RequestPayload carries the fields any action may need.
type RequestPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Session *entity.Session `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (that *Server) handleNewGame(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleNewGame", "connectionID", c.id)

	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err.Error())
	}

	mode, err := entity.ParseMode(payload.Mode)
	if err != nil {
		return that.sendError(c, msg.Action, err.Error())
	}

	session, err := that.games.NewSession(ctx, entity.NewSessionConfig(mode))
	if err != nil {
		log.Error("failed to create session", "error", err)
		return that.sendError(c, msg.Action, "failed to create a new game")
	}

	c.sessionID = session.ID
	log.Info("game started", "sessionID", session.ID, "mode", mode)

	return that.sendSession(c, msg.Action, session)
}

func (that *Server) handleReset(ctx context.Context, c *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err.Error())
	}

	if c.sessionID == "" {
		return that.sendError(c, msg.Action, apperror.ErrGameIsNotStarted.Error())
	}

	mode, err := entity.ParseMode(payload.Mode)
	if err != nil {
		return that.sendError(c, msg.Action, err.Error())
	}

	session, err := that.games.Reset(ctx, c.sessionID, mode)
	if err != nil {
		return that.replyError(c, msg.Action, nil, err)
	}

	return that.sendSession(c, msg.Action, session)
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err.Error())
	}

	if payload.Cell == nil {
		return that.sendError(c, msg.Action, "cell is required")
	}

	if c.sessionID == "" {
		return that.sendError(c, msg.Action, apperror.ErrGameIsNotStarted.Error())
	}

	session, err := that.games.MakeTurn(ctx, c.sessionID, *payload.Cell)
	if err != nil {
		return that.replyError(c, msg.Action, session, err)
	}

	return that.sendSession(c, msg.Action, session)
}

// handleGameState - returns the current session. A session_id in the payload
// reattaches the connection to a game started earlier.
func (that *Server) handleGameState(ctx context.Context, c *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.sendError(c, msg.Action, err.Error())
	}

	id := c.sessionID
	if payload.SessionID != "" {
		id = payload.SessionID
	}

	if id == "" {
		return that.sendError(c, msg.Action, apperror.ErrGameIsNotStarted.Error())
	}

	session, err := that.games.GetSession(ctx, id)
	if err != nil {
		return that.replyError(c, msg.Action, nil, err)
	}

	c.sessionID = session.ID

	return that.sendSession(c, msg.Action, session)
}

func (that *Server) handleGameLeave(ctx context.Context, c *client, msg *Message) error {
	if c.sessionID == "" {
		return that.sendError(c, msg.Action, apperror.ErrGameIsNotStarted.Error())
	}

	if err := that.games.EndSession(ctx, c.sessionID); err != nil {
		return that.replyError(c, msg.Action, nil, err)
	}

	that.logger.Info("player left", "connectionID", c.id, "sessionID", c.sessionID)
	c.sessionID = ""

	return that.send(c, msg.Action, ResponsePayload{})
}

// replyError - domain errors go back to the client; anything else is logged
// and reported without details.
func (that *Server) replyError(c *client, action string, session *entity.Session, err error) error {
	switch {
	case errors.Is(err, apperror.ErrOutOfRange),
		errors.Is(err, apperror.ErrIllegalMove),
		errors.Is(err, apperror.ErrUnknownMode),
		errors.Is(err, apperror.ErrSessionNotFound):
		return that.send(c, action, ResponsePayload{Session: session, Error: err.Error()})
	default:
		that.logger.Error("request failed", "action", action, "connectionID", c.id, "error", err)
		return that.sendError(c, action, "internal error")
	}
}

func (that *Server) sendSession(c *client, action string, session *entity.Session) error {
	return that.send(c, action, ResponsePayload{Session: session})
}

func (that *Server) sendError(c *client, action, errorMsg string) error {
	return that.send(c, action, ResponsePayload{Error: errorMsg})
}

func (that *Server) send(c *client, action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = c.writeJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("invalid payload: %w", err)
	}

	return payload, nil
}
