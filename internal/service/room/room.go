package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/watchroom/server/internal/repository/room"
)

// DefaultVideoURL is the video every new room opens with until the host
// changes it.
const DefaultVideoURL = "https://youtu.be/8yh9BPUBbbQ"

type CreateRoomParams struct {
	Name            string
	HostId          string
	HostUsername    string
	DurationMinutes int
	VideoURL        string
}

type CreateRoomResponse struct {
	RoomId    string
	Name      string
	VideoURL  string
	ExpiresAt time.Time
}

// CreateRoom persists a new room and seeds its history with the opening
// video. Room names are stored lowercased.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	videoURL := params.VideoURL
	if videoURL == "" {
		videoURL = DefaultVideoURL
	}

	roomId := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(time.Duration(params.DurationMinutes) * time.Minute)

	if err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
		RoomId:       roomId,
		Name:         strings.ToLower(params.Name),
		HostId:       params.HostId,
		HostUsername: params.HostUsername,
		VideoURL:     videoURL,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	if err := s.roomRepo.AppendToHistory(ctx, &room.QueueVideoParams{RoomId: roomId, VideoURL: videoURL}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to seed history: %w", err)
	}

	return CreateRoomResponse{
		RoomId:    roomId,
		Name:      strings.ToLower(params.Name),
		VideoURL:  videoURL,
		ExpiresAt: expiresAt,
	}, nil
}

// GetRoomState assembles the full durable view of a room. Inactive rooms
// read as not found.
func (s service) GetRoomState(ctx context.Context, roomId string) (RoomView, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return RoomView{}, s.mapRoomRepoError(err)
	}
	if !rm.IsActive {
		return RoomView{}, ErrRoomNotFound
	}

	moderators, err := s.roomRepo.GetModerators(ctx, roomId)
	if err != nil {
		return RoomView{}, fmt.Errorf("failed to get moderators: %w", err)
	}
	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		return RoomView{}, fmt.Errorf("failed to get participants: %w", err)
	}
	bannedUsers, err := s.roomRepo.GetBannedUsers(ctx, roomId)
	if err != nil {
		return RoomView{}, fmt.Errorf("failed to get banned users: %w", err)
	}
	queue, err := s.roomRepo.GetQueue(ctx, roomId)
	if err != nil {
		return RoomView{}, fmt.Errorf("failed to get queue: %w", err)
	}
	history, err := s.roomRepo.GetHistory(ctx, roomId)
	if err != nil {
		return RoomView{}, fmt.Errorf("failed to get history: %w", err)
	}

	return RoomView{
		RoomId:       roomId,
		Name:         rm.Name,
		Host:         room.RoomUser{UserId: rm.HostId, Username: rm.HostUsername},
		Moderators:   moderators,
		Participants: participants,
		BannedUsers:  bannedUsers,
		VideoURL:     rm.VideoURL,
		Queue:        queue,
		History:      history,
		CreatedAt:    time.Unix(rm.CreatedAt, 0),
		ExpiresAt:    time.Unix(rm.ExpiresAt, 0),
	}, nil
}

type DeleteRoomParams struct {
	RoomId      string
	RequesterId string
}

// DeleteRoom removes a room and everything hanging off it. Host only.
// Chat messages go first so a partial failure cannot leave orphaned
// messages behind a deleted room.
func (s service) DeleteRoom(ctx context.Context, params *DeleteRoomParams) error {
	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		return s.mapRoomRepoError(err)
	}
	if rm.HostId != params.RequesterId {
		return ErrPermissionDenied
	}

	if err := s.messageRepo.DeleteMessagesByRoom(ctx, params.RoomId); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if err := s.roomRepo.DeleteRoom(ctx, params.RoomId); err != nil {
		return s.mapRoomRepoError(err)
	}
	s.buffer.Discard(params.RoomId)

	return nil
}
