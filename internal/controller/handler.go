package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/service/room"
)

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	if roomId == "" {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	userId := r.URL.Query().Get("user-id")
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if userId == "" || len(username) < 2 || len(username) > 20 {
		http.Error(w, "invalid user id or username", http.StatusBadRequest)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	joinRoomResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId:   roomId,
		UserId:   userId,
		Username: username,
		Conn:     conn,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)
		c.handleWSError(r.Context(), conn, err)
		return
	}
	defer c.disconnect(r.Context(), conn)

	if err := c.writeToConn(r.Context(), conn, &Output{
		Type: "joinedRoom",
		Payload: map[string]any{
			"connectionId": joinRoomResp.ConnId,
			"member":       joinRoomResp.JoinedMember,
			"members":      joinRoomResp.Members,
			"player":       joinRoomResp.Player,
			"videoUrl":     joinRoomResp.VideoURL,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	if err := c.broadcast(r.Context(), joinRoomResp.Conns, &Output{
		Type: "userJoined",
		Payload: map[string]any{
			"member": joinRoomResp.JoinedMember,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to broadcast user joined", "error", err)
		return
	}
	if err := c.broadcast(r.Context(), joinRoomResp.Conns, &Output{
		Type: "membersUpdate",
		Payload: map[string]any{
			"members": joinRoomResp.Members,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to broadcast members update", "error", err)
		return
	}

	// late joiner share negotiation: the joiner learns a share is running,
	// the sharer is asked to open a peer connection to the new member
	if joinRoomResp.SharerConn != nil {
		if err := c.writeToConn(r.Context(), conn, &Output{
			Type: "screenShareStarted",
			Payload: map[string]any{
				"sharerConnectionId": joinRoomResp.SharerConnId,
			},
		}); err != nil {
			c.logger.DebugContext(r.Context(), "failed to notify joiner of active share", "error", err)
		}
		if err := c.writeToConn(r.Context(), joinRoomResp.SharerConn, &Output{
			Type: "initiatePeer",
			Payload: map[string]any{
				"connectionId": joinRoomResp.ConnId,
			},
		}); err != nil {
			c.logger.DebugContext(r.Context(), "failed to notify sharer of joiner", "error", err)
		}
	}

	ctx := context.WithValue(r.Context(), roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, userIdCtxKey, userId)
	ctx = context.WithValue(ctx, connIdCtxKey, joinRoomResp.ConnId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(r.Context(), "websocket read loop ended", "error", err)
	}
}

// disconnect runs after the read loop ends for any reason and cleans up
// every room the connection was part of.
func (c controller) disconnect(ctx context.Context, conn *websocket.Conn) {
	defer c.connLocks.forget(conn)

	disconnectResp, err := c.roomService.DisconnectMember(ctx, conn)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect member", "error", err)
		return
	}

	for _, departure := range disconnectResp.Departed {
		if err := c.broadcastDeparture(ctx, &departure.LeaveRoomResponse); err != nil {
			c.logger.WarnContext(ctx, "failed to broadcast departure", "roomId", departure.RoomId, "error", err)
		}
	}
}
