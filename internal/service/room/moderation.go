package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/session"
)

type ModerationParams struct {
	RoomId   string
	SenderId string
	TargetId string
}

type RoleChangeResponse struct {
	Members []Member
	Conns   []*websocket.Conn
}

// PromoteMember moves a participant into the moderator list. Host only.
// The sender's in-memory role is checked first and then re-validated
// against the durable record so a stale session cannot grant the change.
func (s service) PromoteMember(ctx context.Context, params *ModerationParams) (RoleChangeResponse, error) {
	if err := s.checkHost(ctx, params.RoomId, params.SenderId); err != nil {
		return RoleChangeResponse{}, err
	}

	isParticipant, err := s.roomRepo.IsParticipant(ctx, &room.UserParams{RoomId: params.RoomId, UserId: params.TargetId})
	if err != nil {
		return RoleChangeResponse{}, fmt.Errorf("failed to check participants: %w", err)
	}
	if !isParticipant {
		return RoleChangeResponse{}, ErrUserNotFound
	}

	if err := s.roomRepo.PromoteUser(ctx, &room.MoveUserParams{RoomId: params.RoomId, UserId: params.TargetId}); err != nil {
		return RoleChangeResponse{}, s.mapRoomRepoError(err)
	}

	if err := s.sessionRepo.SetRole(params.RoomId, params.TargetId, session.RoleModerator); err != nil {
		s.logger.DebugContext(ctx, "promoted user is not connected", "roomId", params.RoomId, "userId", params.TargetId)
	}

	return RoleChangeResponse{
		Members: s.getMembers(params.RoomId),
		Conns:   s.getConns(ctx, params.RoomId),
	}, nil
}

// DemoteMember moves a moderator back to the participant list. Host only.
func (s service) DemoteMember(ctx context.Context, params *ModerationParams) (RoleChangeResponse, error) {
	if err := s.checkHost(ctx, params.RoomId, params.SenderId); err != nil {
		return RoleChangeResponse{}, err
	}

	isModerator, err := s.roomRepo.IsModerator(ctx, &room.UserParams{RoomId: params.RoomId, UserId: params.TargetId})
	if err != nil {
		return RoleChangeResponse{}, fmt.Errorf("failed to check moderators: %w", err)
	}
	if !isModerator {
		return RoleChangeResponse{}, ErrUserNotFound
	}

	if err := s.roomRepo.DemoteUser(ctx, &room.MoveUserParams{RoomId: params.RoomId, UserId: params.TargetId}); err != nil {
		return RoleChangeResponse{}, s.mapRoomRepoError(err)
	}

	if err := s.sessionRepo.SetRole(params.RoomId, params.TargetId, session.RoleParticipant); err != nil {
		s.logger.DebugContext(ctx, "demoted user is not connected", "roomId", params.RoomId, "userId", params.TargetId)
	}

	return RoleChangeResponse{
		Members: s.getMembers(params.RoomId),
		Conns:   s.getConns(ctx, params.RoomId),
	}, nil
}

// checkHost verifies the sender is the host both in the live session and in
// the durable room record.
func (s service) checkHost(ctx context.Context, roomId, senderId string) error {
	entry, err := s.getEntry(roomId, senderId)
	if err != nil {
		return err
	}
	if entry.Role != session.RoleHost {
		return ErrPermissionDenied
	}

	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return s.mapRoomRepoError(err)
	}
	if rm.HostId != senderId {
		return ErrPermissionDenied
	}

	return nil
}

type RemovalResponse struct {
	TargetConn    *websocket.Conn
	LeftMember    Member
	Members       []Member
	Conns         []*websocket.Conn
	SharerStopped bool
}

// KickMember removes a connected member from the room. Hosts and moderators
// may kick. The target's connection is handed back so the caller can
// deliver the kick notice before closing it.
func (s service) KickMember(ctx context.Context, params *ModerationParams) (RemovalResponse, error) {
	sender, err := s.getEntry(params.RoomId, params.SenderId)
	if err != nil {
		return RemovalResponse{}, err
	}
	if sender.Role != session.RoleHost && sender.Role != session.RoleModerator {
		return RemovalResponse{}, ErrPermissionDenied
	}

	target, err := s.sessionRepo.GetEntry(params.RoomId, params.TargetId)
	if err != nil {
		return RemovalResponse{}, ErrUserNotFound
	}

	return s.removeMember(ctx, params.RoomId, target)
}

type BanResponse struct {
	RemovalResponse
	WasConnected bool
	BannedUsers  []string
}

// BanMember adds the target to the room's ban set and, when connected,
// disconnects them. The host may ban anyone but themself; moderators may
// ban participants only. Banning the host is never allowed. Re-banning an
// already banned user succeeds without change.
func (s service) BanMember(ctx context.Context, params *ModerationParams) (BanResponse, error) {
	sender, err := s.getEntry(params.RoomId, params.SenderId)
	if err != nil {
		return BanResponse{}, err
	}

	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		return BanResponse{}, s.mapRoomRepoError(err)
	}
	if params.TargetId == rm.HostId {
		return BanResponse{}, ErrPermissionDenied
	}

	switch sender.Role {
	case session.RoleHost:
		if params.TargetId == params.SenderId {
			return BanResponse{}, ErrPermissionDenied
		}
	case session.RoleModerator:
		isModerator, err := s.roomRepo.IsModerator(ctx, &room.UserParams{RoomId: params.RoomId, UserId: params.TargetId})
		if err != nil {
			return BanResponse{}, fmt.Errorf("failed to check moderators: %w", err)
		}
		if isModerator {
			return BanResponse{}, ErrPermissionDenied
		}
	default:
		return BanResponse{}, ErrPermissionDenied
	}

	if err := s.roomRepo.BanUser(ctx, &room.UserParams{RoomId: params.RoomId, UserId: params.TargetId}); err != nil {
		return BanResponse{}, fmt.Errorf("failed to ban user: %w", err)
	}

	bannedUsers, err := s.roomRepo.GetBannedUsers(ctx, params.RoomId)
	if err != nil {
		return BanResponse{}, fmt.Errorf("failed to get banned users: %w", err)
	}

	resp := BanResponse{BannedUsers: bannedUsers}

	target, err := s.sessionRepo.GetEntry(params.RoomId, params.TargetId)
	if err != nil {
		// target is offline, the ban still sticks
		resp.RemovalResponse.Members = s.getMembers(params.RoomId)
		resp.RemovalResponse.Conns = s.getConns(ctx, params.RoomId)
		return resp, nil
	}

	removal, err := s.removeMember(ctx, params.RoomId, target)
	if err != nil {
		return BanResponse{}, err
	}
	resp.RemovalResponse = removal
	resp.WasConnected = true

	return resp, nil
}

// removeMember forcibly takes a connected member out of the room. The
// connection leaves the registry here; closing it is left to the caller so
// the removal notice can still be delivered.
func (s service) removeMember(ctx context.Context, roomId string, target session.Entry) (RemovalResponse, error) {
	targetConn, err := s.connRepo.RemoveByConnId(target.ConnId)
	if err != nil {
		s.logger.WarnContext(ctx, "removed member had no connection", "roomId", roomId, "userId", target.UserId)
	}

	left, err := s.leave(ctx, roomId, target.UserId)
	if err != nil {
		return RemovalResponse{}, err
	}

	return RemovalResponse{
		TargetConn:    targetConn,
		LeftMember:    left.LeftMember,
		Members:       left.Members,
		Conns:         left.Conns,
		SharerStopped: left.SharerStopped,
	}, nil
}
