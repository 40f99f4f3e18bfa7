package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/session"
)

type JoinRoomParams struct {
	RoomId   string
	UserId   string
	Username string
	Conn     *websocket.Conn
}

type JoinRoomResponse struct {
	JoinedMember Member
	Members      []Member
	Conns        []*websocket.Conn
	ConnId       string
	Player       Player
	VideoURL     string
	SharerConnId string
	SharerConn   *websocket.Conn
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, s.mapRoomRepoError(err)
	}

	banned, err := s.roomRepo.IsBanned(ctx, &room.UserParams{RoomId: params.RoomId, UserId: params.UserId})
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to check ban list: %w", err)
	}
	if banned {
		return JoinRoomResponse{}, ErrUserBanned
	}

	role := session.RoleParticipant
	switch {
	case rm.HostId == params.UserId:
		role = session.RoleHost
	default:
		isModerator, err := s.roomRepo.IsModerator(ctx, &room.UserParams{RoomId: params.RoomId, UserId: params.UserId})
		if err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to check moderators: %w", err)
		}
		if isModerator {
			role = session.RoleModerator
		} else {
			// first-timers land in the durable participant list so promotion
			// has something to move
			if err := s.roomRepo.AddParticipantToList(ctx, &room.AddUserToListParams{
				RoomId:   params.RoomId,
				UserId:   params.UserId,
				Username: params.Username,
			}); err != nil {
				return JoinRoomResponse{}, fmt.Errorf("failed to add participant: %w", err)
			}
		}
	}

	username := params.Username
	if role == session.RoleHost {
		username = rm.HostUsername
	}

	connId := uuid.NewString()
	if err := s.connRepo.Add(params.Conn, connId); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to register connection: %w", err)
	}

	entry := session.Entry{
		UserId:   params.UserId,
		Username: username,
		Role:     role,
		ConnId:   connId,
	}
	if err := s.sessionRepo.AddEntry(params.RoomId, entry); err != nil {
		if _, removeErr := s.connRepo.RemoveByConnId(connId); removeErr != nil {
			s.logger.WarnContext(ctx, "failed to unregister connection after join failure", "error", removeErr)
		}
		if errors.Is(err, session.ErrAlreadyExists) {
			return JoinRoomResponse{}, ErrAlreadyInRoom
		}
		return JoinRoomResponse{}, fmt.Errorf("failed to add session entry: %w", err)
	}

	resp := JoinRoomResponse{
		JoinedMember: toMember(entry),
		Members:      s.getMembers(params.RoomId),
		Conns:        s.getConns(ctx, params.RoomId),
		ConnId:       connId,
		Player:       s.getPlayer(ctx, params.RoomId),
		VideoURL:     rm.VideoURL,
	}

	if sharerConnId, ok := s.sessionRepo.GetSharer(params.RoomId); ok {
		sharerConn, err := s.connRepo.GetConn(sharerConnId)
		if err == nil {
			resp.SharerConnId = sharerConnId
			resp.SharerConn = sharerConn
		}
	}

	return resp, nil
}

type LeaveRoomParams struct {
	RoomId string
	UserId string
}

type LeaveRoomResponse struct {
	LeftMember    Member
	Members       []Member
	Conns         []*websocket.Conn
	SharerStopped bool
	SessionClosed bool
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	return s.leave(ctx, params.RoomId, params.UserId)
}

func (s service) leave(ctx context.Context, roomId, userId string) (LeaveRoomResponse, error) {
	entry, err := s.getEntry(roomId, userId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	sharerStopped := false
	if sharerConnId, ok := s.sessionRepo.GetSharer(roomId); ok && sharerConnId == entry.ConnId {
		s.sessionRepo.ClearSharer(roomId)
		sharerStopped = true
	}

	sessionClosed, err := s.sessionRepo.RemoveEntry(roomId, userId)
	if err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to remove session entry: %w", err)
	}

	return LeaveRoomResponse{
		LeftMember:    toMember(entry),
		Members:       s.getMembers(roomId),
		Conns:         s.getConns(ctx, roomId),
		SharerStopped: sharerStopped,
		SessionClosed: sessionClosed,
	}, nil
}

type RoomDeparture struct {
	RoomId string
	LeaveRoomResponse
}

type DisconnectMemberResponse struct {
	ConnId   string
	Departed []RoomDeparture
}

// DisconnectMember tears down everything tied to a closed connection. The
// connection may belong to several rooms; each is cleaned up independently.
func (s service) DisconnectMember(ctx context.Context, conn *websocket.Conn) (DisconnectMemberResponse, error) {
	connId, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		// never joined a room
		return DisconnectMemberResponse{}, nil
	}

	resp := DisconnectMemberResponse{ConnId: connId}
	for _, roomId := range s.sessionRepo.FindRoomsByConnId(connId) {
		entry, err := s.sessionRepo.FindEntryByConnId(roomId, connId)
		if err != nil {
			continue
		}
		left, err := s.leave(ctx, roomId, entry.UserId)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to leave room on disconnect", "roomId", roomId, "error", err)
			continue
		}
		resp.Departed = append(resp.Departed, RoomDeparture{RoomId: roomId, LeaveRoomResponse: left})
	}

	return resp, nil
}

type UpdateUsernameParams struct {
	RoomId   string
	UserId   string
	Username string
}

type UpdateUsernameResponse struct {
	UpdatedMember Member
	Members       []Member
	Conns         []*websocket.Conn
}

func (s service) UpdateUsername(ctx context.Context, params *UpdateUsernameParams) (UpdateUsernameResponse, error) {
	username := strings.TrimSpace(params.Username)
	if len(username) < 2 || len(username) > 20 {
		return UpdateUsernameResponse{}, ErrInvalidUsername
	}

	entry, err := s.getEntry(params.RoomId, params.UserId)
	if err != nil {
		return UpdateUsernameResponse{}, err
	}

	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		return UpdateUsernameResponse{}, s.mapRoomRepoError(err)
	}

	lowered := strings.ToLower(username)
	if rm.HostId != params.UserId && strings.ToLower(rm.HostUsername) == lowered {
		return UpdateUsernameResponse{}, ErrUsernameTaken
	}
	usernames, err := s.roomRepo.GetUsernames(ctx, params.RoomId)
	if err != nil {
		return UpdateUsernameResponse{}, fmt.Errorf("failed to get usernames: %w", err)
	}
	for userId, taken := range usernames {
		if userId != params.UserId && strings.ToLower(taken) == lowered {
			return UpdateUsernameResponse{}, ErrUsernameTaken
		}
	}

	if rm.HostId == params.UserId {
		err = s.roomRepo.UpdateHostUsername(ctx, &room.UpdateHostUsernameParams{RoomId: params.RoomId, Username: username})
	} else {
		err = s.roomRepo.SetUserUsername(ctx, &room.SetUsernameParams{RoomId: params.RoomId, UserId: params.UserId, Username: username})
	}
	if err != nil {
		return UpdateUsernameResponse{}, s.mapRoomRepoError(err)
	}

	if err := s.sessionRepo.SetUsername(params.RoomId, params.UserId, username); err != nil {
		s.logger.WarnContext(ctx, "failed to update session username", "roomId", params.RoomId, "error", err)
	}

	entry.Username = username

	return UpdateUsernameResponse{
		UpdatedMember: toMember(entry),
		Members:       s.getMembers(params.RoomId),
		Conns:         s.getConns(ctx, params.RoomId),
	}, nil
}
