package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/service/room"
)

type ChangeVideoInput struct {
	VideoURL string `json:"videoUrl"`
}

func (c controller) handleChangeVideo(ctx context.Context, conn *websocket.Conn, input ChangeVideoInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	changeVideoResp, err := c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		RoomId:   roomId,
		SenderId: userId,
		VideoURL: input.VideoURL,
	})
	if err != nil {
		return fmt.Errorf("failed to change video: %w", err)
	}

	if err := c.broadcast(ctx, changeVideoResp.Conns, &Output{
		Type: "videoUpdate",
		Payload: map[string]any{
			"videoUrl": changeVideoResp.VideoURL,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast video update: %w", err)
	}

	if err := c.broadcast(ctx, changeVideoResp.Conns, &Output{
		Type: "syncPlayerState",
		Payload: map[string]any{
			"player": changeVideoResp.Player,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast player state: %w", err)
	}

	if err := c.broadcast(ctx, changeVideoResp.Conns, &Output{
		Type: "historyUpdate",
		Payload: map[string]any{
			"history": changeVideoResp.History,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast history update: %w", err)
	}

	return nil
}

type PlayNextInput struct {
	Mode string `json:"mode"`
}

func (c controller) handlePlayNext(ctx context.Context, conn *websocket.Conn, input PlayNextInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	playNextResp, err := c.roomService.PlayNext(ctx, &room.PlayNextParams{
		RoomId:   roomId,
		SenderId: userId,
		Mode:     input.Mode,
	})
	if err != nil {
		return fmt.Errorf("failed to play next: %w", err)
	}
	if !playNextResp.Advanced {
		return nil
	}

	if err := c.broadcast(ctx, playNextResp.Conns, &Output{
		Type: "videoUpdate",
		Payload: map[string]any{
			"videoUrl": playNextResp.VideoURL,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast video update: %w", err)
	}

	if err := c.broadcast(ctx, playNextResp.Conns, &Output{
		Type: "syncPlayerState",
		Payload: map[string]any{
			"player": playNextResp.Player,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast player state: %w", err)
	}

	if err := c.broadcast(ctx, playNextResp.Conns, &Output{
		Type: "playlistUpdate",
		Payload: map[string]any{
			"queue": playNextResp.Queue,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast playlist update: %w", err)
	}

	if err := c.broadcast(ctx, playNextResp.Conns, &Output{
		Type: "historyUpdate",
		Payload: map[string]any{
			"history": playNextResp.History,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast history update: %w", err)
	}

	return nil
}

type PlayerStateChangeInput struct {
	Status string `json:"status"`
	Time   int    `json:"time"`
}

func (c controller) handlePlayerStateChange(ctx context.Context, conn *websocket.Conn, input PlayerStateChangeInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	reportPlayerStateResp, err := c.roomService.ReportPlayerState(ctx, &room.ReportPlayerStateParams{
		RoomId:   roomId,
		SenderId: userId,
		Status:   input.Status,
		Time:     input.Time,
	})
	if err != nil {
		return fmt.Errorf("failed to report player state: %w", err)
	}

	// reporter included so every client converges on the same snapshot
	if err := c.broadcast(ctx, reportPlayerStateResp.Conns, &Output{
		Type: "syncPlayerState",
		Payload: map[string]any{
			"player": reportPlayerStateResp.Player,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast player state: %w", err)
	}

	return nil
}

func (c controller) handleRequestInitialState(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	roomId := c.getRoomIdFromCtx(ctx)

	initialStateResp, err := c.roomService.GetInitialState(ctx, roomId)
	if err != nil {
		return fmt.Errorf("failed to get initial state: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "initialState",
		Payload: map[string]any{
			"player":   initialStateResp.Player,
			"videoUrl": initialStateResp.VideoURL,
		},
	}); err != nil {
		return fmt.Errorf("failed to write initial state: %w", err)
	}

	return nil
}

type AddToPlaylistInput struct {
	VideoURL string `json:"videoUrl"`
}

func (c controller) handleAddToPlaylist(ctx context.Context, conn *websocket.Conn, input AddToPlaylistInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	addToPlaylistResp, err := c.roomService.AddToPlaylist(ctx, &room.AddToPlaylistParams{
		RoomId:   roomId,
		SenderId: userId,
		VideoURL: input.VideoURL,
	})
	if err != nil {
		return fmt.Errorf("failed to add to playlist: %w", err)
	}

	if err := c.broadcast(ctx, addToPlaylistResp.Conns, &Output{
		Type: "playlistUpdate",
		Payload: map[string]any{
			"queue": addToPlaylistResp.Queue,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast playlist update: %w", err)
	}

	return nil
}

type RemovePlaylistItemInput struct {
	VideoURL string `json:"videoUrl"`
}

func (c controller) handleRemovePlaylistItem(ctx context.Context, conn *websocket.Conn, input RemovePlaylistItemInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	removeFromPlaylistResp, err := c.roomService.RemoveFromPlaylist(ctx, &room.RemoveFromPlaylistParams{
		RoomId:   roomId,
		SenderId: userId,
		VideoURL: input.VideoURL,
	})
	if err != nil {
		return fmt.Errorf("failed to remove from playlist: %w", err)
	}

	if err := c.broadcast(ctx, removeFromPlaylistResp.Conns, &Output{
		Type: "playlistUpdate",
		Payload: map[string]any{
			"queue": removeFromPlaylistResp.Queue,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast playlist update: %w", err)
	}

	return nil
}

type MovePlaylistItemInput struct {
	VideoURL  string `json:"videoUrl"`
	Direction string `json:"direction"`
}

func (c controller) handleMovePlaylistItem(ctx context.Context, conn *websocket.Conn, input MovePlaylistItemInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	movePlaylistItemResp, err := c.roomService.MovePlaylistItem(ctx, &room.MovePlaylistItemParams{
		RoomId:    roomId,
		SenderId:  userId,
		VideoURL:  input.VideoURL,
		Direction: input.Direction,
	})
	if err != nil {
		return fmt.Errorf("failed to move playlist item: %w", err)
	}

	if err := c.broadcast(ctx, movePlaylistItemResp.Conns, &Output{
		Type: "playlistUpdate",
		Payload: map[string]any{
			"queue": movePlaylistItemResp.Queue,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast playlist update: %w", err)
	}

	return nil
}
