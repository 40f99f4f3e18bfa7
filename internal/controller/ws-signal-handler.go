package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/service/room"
)

func (c controller) handleStartScreenShare(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	connId := c.getConnIdFromCtx(ctx)

	startScreenShareResp, err := c.roomService.StartScreenShare(ctx, &room.StartScreenShareParams{
		RoomId: roomId,
		ConnId: connId,
	})
	if err != nil {
		return fmt.Errorf("failed to start screen share: %w", err)
	}

	if err := c.broadcast(ctx, startScreenShareResp.Conns, &Output{
		Type: "screenShareStarted",
		Payload: map[string]any{
			"sharer": startScreenShareResp.Sharer,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast screen share started: %w", err)
	}

	return nil
}

func (c controller) handleStopScreenShare(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	connId := c.getConnIdFromCtx(ctx)

	stopScreenShareResp, err := c.roomService.StopScreenShare(ctx, &room.StopScreenShareParams{
		RoomId: roomId,
		ConnId: connId,
	})
	if err != nil {
		return fmt.Errorf("failed to stop screen share: %w", err)
	}

	if err := c.broadcast(ctx, stopScreenShareResp.Conns, &Output{
		Type:    "screenShareStopped",
		Payload: nil,
	}); err != nil {
		return fmt.Errorf("failed to broadcast screen share stopped: %w", err)
	}

	return nil
}

// SignalInput carries an opaque negotiation payload addressed to a single
// connection. The payload is relayed untouched.
type SignalInput struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

func (c controller) relaySignal(ctx context.Context, messageType string, input SignalInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	connId := c.getConnIdFromCtx(ctx)

	relaySignalResp, err := c.roomService.RelaySignal(ctx, &room.RelaySignalParams{
		RoomId:     roomId,
		FromConnId: connId,
		ToConnId:   input.To,
	})
	if err != nil {
		return fmt.Errorf("failed to relay signal: %w", err)
	}

	if err := c.writeToConn(ctx, relaySignalResp.TargetConn, &Output{
		Type: messageType,
		Payload: map[string]any{
			"from":   connId,
			"signal": input.Signal,
		},
	}); err != nil {
		return fmt.Errorf("failed to write signal: %w", err)
	}

	return nil
}

func (c controller) handleWebRTCOffer(ctx context.Context, conn *websocket.Conn, input SignalInput) error {
	return c.relaySignal(ctx, "webrtc-offer", input)
}

func (c controller) handleWebRTCAnswer(ctx context.Context, conn *websocket.Conn, input SignalInput) error {
	return c.relaySignal(ctx, "webrtc-answer", input)
}

func (c controller) handleICECandidate(ctx context.Context, conn *websocket.Conn, input SignalInput) error {
	return c.relaySignal(ctx, "webrtc-ice-candidate", input)
}

func (c controller) handleRequestScreenShare(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	connId := c.getConnIdFromCtx(ctx)

	requestScreenShareResp, err := c.roomService.RequestScreenShare(ctx, &room.RequestScreenShareParams{
		RoomId:     roomId,
		FromConnId: connId,
	})
	if err != nil {
		return fmt.Errorf("failed to request screen share: %w", err)
	}

	if err := c.writeToConn(ctx, requestScreenShareResp.HostConn, &Output{
		Type: "screenShareRequested",
		Payload: map[string]any{
			"requester": requestScreenShareResp.Requester,
		},
	}); err != nil {
		return fmt.Errorf("failed to write screen share request: %w", err)
	}

	return nil
}

type RespondScreenShareInput struct {
	UserId   string `json:"userId"`
	Accepted bool   `json:"accepted"`
}

func (c controller) handleRespondScreenShare(ctx context.Context, conn *websocket.Conn, input RespondScreenShareInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	respondScreenShareResp, err := c.roomService.RespondScreenShare(ctx, &room.RespondScreenShareParams{
		RoomId:      roomId,
		SenderId:    userId,
		RequesterId: input.UserId,
		Accepted:    input.Accepted,
	})
	if err != nil {
		return fmt.Errorf("failed to respond to screen share request: %w", err)
	}

	if err := c.writeToConn(ctx, respondScreenShareResp.RequesterConn, &Output{
		Type: "screenShareResponse",
		Payload: map[string]any{
			"accepted": respondScreenShareResp.Accepted,
		},
	}); err != nil {
		return fmt.Errorf("failed to write screen share response: %w", err)
	}

	return nil
}
