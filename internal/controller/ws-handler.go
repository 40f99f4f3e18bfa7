package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/message"
	"github.com/watchroom/server/internal/service/room"
)

func (c controller) handleLeave(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	leaveRoomResp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		RoomId: roomId,
		UserId: userId,
	})
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return c.broadcastDeparture(ctx, &leaveRoomResp)
}

// broadcastDeparture tells everyone who left, plus the stopped share when
// the leaver was the sharer.
func (c controller) broadcastDeparture(ctx context.Context, left *room.LeaveRoomResponse) error {
	if err := c.broadcast(ctx, left.Conns, &Output{
		Type: "userLeft",
		Payload: map[string]any{
			"member": left.LeftMember,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast user left: %w", err)
	}

	if err := c.broadcast(ctx, left.Conns, &Output{
		Type: "membersUpdate",
		Payload: map[string]any{
			"members": left.Members,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast members update: %w", err)
	}

	if left.SharerStopped {
		if err := c.broadcast(ctx, left.Conns, &Output{
			Type:    "screenShareStopped",
			Payload: nil,
		}); err != nil {
			return fmt.Errorf("failed to broadcast screen share stopped: %w", err)
		}
	}

	return nil
}

type UpdateUsernameInput struct {
	NewUsername string `json:"newUsername"`
}

func (c controller) handleUpdateUsername(ctx context.Context, conn *websocket.Conn, input UpdateUsernameInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	updateUsernameResp, err := c.roomService.UpdateUsername(ctx, &room.UpdateUsernameParams{
		RoomId:   roomId,
		UserId:   userId,
		Username: input.NewUsername,
	})
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}

	if err := c.broadcast(ctx, updateUsernameResp.Conns, &Output{
		Type: "membersUpdate",
		Payload: map[string]any{
			"members":       updateUsernameResp.Members,
			"updatedMember": updateUsernameResp.UpdatedMember,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast members update: %w", err)
	}

	return nil
}

type ChatMessageInput struct {
	Text    string           `json:"text"`
	ReplyTo *message.ReplyTo `json:"replyTo"`
}

func (c controller) handleChatMessage(ctx context.Context, conn *websocket.Conn, input ChatMessageInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomId:   roomId,
		SenderId: userId,
		Content:  input.Text,
		ReplyTo:  input.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if err := c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type:    "chatMessage",
		Payload: sendMessageResp.Message,
	}); err != nil {
		return fmt.Errorf("failed to broadcast chat message: %w", err)
	}

	return nil
}

type ModerationInput struct {
	UserId string `json:"userId"`
}

func (c controller) handleMakeModerator(ctx context.Context, conn *websocket.Conn, input ModerationInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	promoteMemberResp, err := c.roomService.PromoteMember(ctx, &room.ModerationParams{
		RoomId:   roomId,
		SenderId: userId,
		TargetId: input.UserId,
	})
	if err != nil {
		return fmt.Errorf("failed to promote member: %w", err)
	}

	if err := c.broadcast(ctx, promoteMemberResp.Conns, &Output{
		Type: "membersUpdate",
		Payload: map[string]any{
			"members": promoteMemberResp.Members,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast members update: %w", err)
	}

	return nil
}

func (c controller) handleRemoveModerator(ctx context.Context, conn *websocket.Conn, input ModerationInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	demoteMemberResp, err := c.roomService.DemoteMember(ctx, &room.ModerationParams{
		RoomId:   roomId,
		SenderId: userId,
		TargetId: input.UserId,
	})
	if err != nil {
		return fmt.Errorf("failed to demote member: %w", err)
	}

	if err := c.broadcast(ctx, demoteMemberResp.Conns, &Output{
		Type: "membersUpdate",
		Payload: map[string]any{
			"members": demoteMemberResp.Members,
		},
	}); err != nil {
		return fmt.Errorf("failed to broadcast members update: %w", err)
	}

	return nil
}

func (c controller) handleKickUser(ctx context.Context, conn *websocket.Conn, input ModerationInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	kickMemberResp, err := c.roomService.KickMember(ctx, &room.ModerationParams{
		RoomId:   roomId,
		SenderId: userId,
		TargetId: input.UserId,
	})
	if err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}

	if err := c.writeToConn(ctx, kickMemberResp.TargetConn, &Output{
		Type:    "kicked",
		Payload: nil,
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to notify kicked member", "error", err)
	}
	c.closeWithCode(kickMemberResp.TargetConn, 4001, "kicked")

	return c.broadcastDeparture(ctx, &room.LeaveRoomResponse{
		LeftMember:    kickMemberResp.LeftMember,
		Members:       kickMemberResp.Members,
		Conns:         kickMemberResp.Conns,
		SharerStopped: kickMemberResp.SharerStopped,
	})
}

func (c controller) handleBanUser(ctx context.Context, conn *websocket.Conn, input ModerationInput) error {
	roomId := c.getRoomIdFromCtx(ctx)
	userId := c.getUserIdFromCtx(ctx)

	banMemberResp, err := c.roomService.BanMember(ctx, &room.ModerationParams{
		RoomId:   roomId,
		SenderId: userId,
		TargetId: input.UserId,
	})
	if err != nil {
		return fmt.Errorf("failed to ban member: %w", err)
	}

	if !banMemberResp.WasConnected {
		if err := c.broadcast(ctx, banMemberResp.Conns, &Output{
			Type: "membersUpdate",
			Payload: map[string]any{
				"members":     banMemberResp.Members,
				"bannedUsers": banMemberResp.BannedUsers,
			},
		}); err != nil {
			return fmt.Errorf("failed to broadcast members update: %w", err)
		}
		return nil
	}

	if err := c.writeToConn(ctx, banMemberResp.TargetConn, &Output{
		Type:    "banned",
		Payload: nil,
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to notify banned member", "error", err)
	}
	c.closeWithCode(banMemberResp.TargetConn, 4001, "banned")

	return c.broadcastDeparture(ctx, &room.LeaveRoomResponse{
		LeftMember:    banMemberResp.LeftMember,
		Members:       banMemberResp.Members,
		Conns:         banMemberResp.Conns,
		SharerStopped: banMemberResp.SharerStopped,
	})
}
