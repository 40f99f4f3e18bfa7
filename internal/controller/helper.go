package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type EmptyInput struct{}

func (ei *EmptyInput) UnmarshalJSON([]byte) error {
	return nil
}

// writeToConn is the single path for websocket writes. Handlers run on
// their own connection's read loop, so fan-outs from two senders can hit
// the same connection at once; the per-conn lock serializes them.
func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	if conn == nil {
		return nil
	}

	lock := c.connLocks.get(conn)
	lock.Lock()
	defer lock.Unlock()

	return conn.WriteJSON(output)
}

// broadcast fans an output out to every connection. A single dead
// connection must not rob the rest of the update, write failures are
// logged and skipped.
func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) error {
	for _, conn := range conns {
		if err := c.writeToConn(ctx, conn, output); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}

	return nil
}

func (c controller) closeWithCode(conn *websocket.Conn, code int, reason string) {
	if conn == nil {
		return
	}

	lock := c.connLocks.get(conn)
	lock.Lock()
	defer lock.Unlock()

	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second*5))
	conn.Close()
}

// handleWSError delivers handler errors to the originating connection only,
// as a plain human-readable message.
func (c controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	c.logger.InfoContext(ctx, "websocket handler error", "error", err)

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "error",
		Payload: map[string]any{
			"message": errorMessage(err),
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error to conn", "error", err)
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrUserNotFound),
		errors.Is(err, room.ErrVideoNotFound),
		errors.Is(err, room.ErrNotInRoom),
		errors.Is(err, room.ErrPermissionDenied),
		errors.Is(err, room.ErrUserBanned),
		errors.Is(err, room.ErrAlreadyInRoom),
		errors.Is(err, room.ErrUsernameTaken),
		errors.Is(err, room.ErrInvalidUsername),
		errors.Is(err, room.ErrInvalidMessage),
		errors.Is(err, room.ErrInvalidPlayerStatus),
		errors.Is(err, room.ErrInvalidMove),
		errors.Is(err, room.ErrHostNotConnected),
		errors.Is(err, wsrouter.ErrUnknownMessageType):
		return err.Error()
	default:
		return "internal error"
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrUserNotFound),
		errors.Is(err, room.ErrVideoNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrPermissionDenied),
		errors.Is(err, room.ErrUserBanned):
		return http.StatusForbidden
	case errors.Is(err, room.ErrInvalidUsername),
		errors.Is(err, room.ErrInvalidMessage),
		errors.Is(err, room.ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrUsernameTaken),
		errors.Is(err, room.ErrAlreadyInRoom):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
