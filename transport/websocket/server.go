package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"libdb.so/hserve"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
)

type gameManager interface {
	NewSession(ctx context.Context, config entity.SessionConfig) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	Reset(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, c *client, msg *Message) error

// client is one websocket connection and the session it plays in.
type client struct {
	id   string
	conn *websocket.Conn

	writeMu   sync.Mutex
	sessionID string
}

func (c *client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteJSON(v)
}

type Server struct {
	logger *slog.Logger
	games  gameManager

	upgrader websocket.Upgrader
	clients  *xsync.MapOf[string, *client]
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: xsync.NewMapOf[string, *client](),
	}

	server.handlers = map[string]handlerFunc{
		actionGameNew:   server.handleNewGame,
		actionGameReset: server.handleReset,
		actionGameTurn:  server.handleGameTurn,
		actionGameState: server.handleGameState,
		actionGameLeave: server.handleGameLeave,
	}

	return server
}

// Start - serves /ws on port until ctx is done, then drops all connections.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	go func() {
		<-ctx.Done()
		that.closeAll()
	}()

	if err := hserve.ListenAndServe(ctx, ":"+port, mux); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the request and processes messages until the peer goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{id: pkg.GenerateSessionID(), conn: conn}
	that.clients.Store(c.id, c)

	defer func() {
		that.clients.Delete(c.id)
		_ = conn.Close()
		// the session itself survives in the store until its TTL runs out
		log.Info("connection closed", "connectionID", c.id, "sessionID", c.sessionID)
	}()

	log.Info("WebSocket connection established", "connectionID", c.id)

	that.handleMessages(r.Context(), c)
}

// ConnectionCount - number of open connections.
func (that *Server) ConnectionCount() int {
	return that.clients.Size()
}

func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages", "connectionID", c.id)

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return
			}

			// frame errors end the connection before decoding starts, so an
			// unexpected EOF here means the frame held truncated JSON
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Warn("failed to decode message", "error", err)
				if err = that.sendError(c, "", "malformed message"); err != nil {
					return
				}
				continue
			}

			log.Debug("read failed", "error", err)
			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			log.Warn("unknown action", "action", msg.Action)
			if err := that.sendError(c, msg.Action, "unknown action"); err != nil {
				return
			}
			continue
		}

		if err := handler(ctx, c, &msg); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
			return
		}
	}
}

func (that *Server) closeAll() {
	that.clients.Range(func(_ string, c *client) bool {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		c.writeMu.Unlock()
		_ = c.conn.Close()

		return true
	})
}
