package room

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/session"
)

// getPlayer returns the room's playback state, lazily recreating it as
// unstarted when the session holds none.
func (s service) getPlayer(ctx context.Context, roomId string) Player {
	player, ok := s.sessionRepo.GetPlayer(roomId)
	if !ok {
		player = session.Player{
			Status:      session.StatusUnstarted,
			Time:        0,
			LastUpdated: time.Now(),
		}
		if err := s.sessionRepo.SetPlayer(roomId, player); err != nil {
			s.logger.DebugContext(ctx, "failed to store recreated player", "roomId", roomId, "error", err)
		}
	}

	return toPlayer(player)
}

type ChangeVideoParams struct {
	RoomId   string
	SenderId string
	VideoURL string
}

type ChangeVideoResponse struct {
	Player   Player
	VideoURL string
	History  []string
	Conns    []*websocket.Conn
}

func (s service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) (ChangeVideoResponse, error) {
	if err := s.checkAuthority(params.RoomId, params.SenderId); err != nil {
		return ChangeVideoResponse{}, err
	}

	if err := s.roomRepo.UpdateRoomVideo(ctx, &room.UpdateRoomVideoParams{
		RoomId:   params.RoomId,
		VideoURL: params.VideoURL,
	}); err != nil {
		return ChangeVideoResponse{}, s.mapRoomRepoError(err)
	}
	if err := s.roomRepo.AppendToHistory(ctx, &room.QueueVideoParams{
		RoomId:   params.RoomId,
		VideoURL: params.VideoURL,
	}); err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to append to history: %w", err)
	}

	player := session.Player{
		Status:      session.StatusPlaying,
		Time:        0,
		LastUpdated: time.Now(),
	}
	if err := s.sessionRepo.SetPlayer(params.RoomId, player); err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	history, err := s.roomRepo.GetHistory(ctx, params.RoomId)
	if err != nil {
		return ChangeVideoResponse{}, fmt.Errorf("failed to get history: %w", err)
	}

	return ChangeVideoResponse{
		Player:   toPlayer(player),
		VideoURL: params.VideoURL,
		History:  history,
		Conns:    s.getConns(ctx, params.RoomId),
	}, nil
}

type AddToPlaylistParams struct {
	RoomId   string
	SenderId string
	VideoURL string
}

type AddToPlaylistResponse struct {
	Queue []string
	Added bool
	Conns []*websocket.Conn
}

// AddToPlaylist queues a video. Any present member may queue, authority is
// only needed to start playback.
func (s service) AddToPlaylist(ctx context.Context, params *AddToPlaylistParams) (AddToPlaylistResponse, error) {
	if _, err := s.getEntry(params.RoomId, params.SenderId); err != nil {
		return AddToPlaylistResponse{}, err
	}

	added, err := s.roomRepo.AppendToQueue(ctx, &room.QueueVideoParams{
		RoomId:   params.RoomId,
		VideoURL: params.VideoURL,
	})
	if err != nil {
		return AddToPlaylistResponse{}, fmt.Errorf("failed to append to queue: %w", err)
	}

	queue, err := s.roomRepo.GetQueue(ctx, params.RoomId)
	if err != nil {
		return AddToPlaylistResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	return AddToPlaylistResponse{
		Queue: queue,
		Added: added,
		Conns: s.getConns(ctx, params.RoomId),
	}, nil
}

type PlayNextParams struct {
	RoomId   string
	SenderId string
	Mode     string
}

type PlayNextResponse struct {
	Advanced bool
	Player   Player
	VideoURL string
	Queue    []string
	History  []string
	Conns    []*websocket.Conn
}

// PlayNext pops the next queued video and starts playing it. In shuffle
// mode the pick is random, otherwise the head of the queue. An empty queue
// is a no-op.
func (s service) PlayNext(ctx context.Context, params *PlayNextParams) (PlayNextResponse, error) {
	if err := s.checkAuthority(params.RoomId, params.SenderId); err != nil {
		return PlayNextResponse{}, err
	}

	queue, err := s.roomRepo.GetQueue(ctx, params.RoomId)
	if err != nil {
		return PlayNextResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}
	if len(queue) == 0 {
		return PlayNextResponse{Advanced: false}, nil
	}

	videoURL := queue[0]
	if params.Mode == "shuffle" {
		videoURL = queue[rand.Intn(len(queue))]
	}

	if err := s.roomRepo.RemoveFromQueue(ctx, &room.QueueVideoParams{
		RoomId:   params.RoomId,
		VideoURL: videoURL,
	}); err != nil {
		return PlayNextResponse{}, s.mapRoomRepoError(err)
	}
	if err := s.roomRepo.UpdateRoomVideo(ctx, &room.UpdateRoomVideoParams{
		RoomId:   params.RoomId,
		VideoURL: videoURL,
	}); err != nil {
		return PlayNextResponse{}, s.mapRoomRepoError(err)
	}
	if err := s.roomRepo.AppendToHistory(ctx, &room.QueueVideoParams{
		RoomId:   params.RoomId,
		VideoURL: videoURL,
	}); err != nil {
		return PlayNextResponse{}, fmt.Errorf("failed to append to history: %w", err)
	}

	player := session.Player{
		Status:      session.StatusPlaying,
		Time:        0,
		LastUpdated: time.Now(),
	}
	if err := s.sessionRepo.SetPlayer(params.RoomId, player); err != nil {
		return PlayNextResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	queue, err = s.roomRepo.GetQueue(ctx, params.RoomId)
	if err != nil {
		return PlayNextResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}
	history, err := s.roomRepo.GetHistory(ctx, params.RoomId)
	if err != nil {
		return PlayNextResponse{}, fmt.Errorf("failed to get history: %w", err)
	}

	return PlayNextResponse{
		Advanced: true,
		Player:   toPlayer(player),
		VideoURL: videoURL,
		Queue:    queue,
		History:  history,
		Conns:    s.getConns(ctx, params.RoomId),
	}, nil
}

type RemoveFromPlaylistParams struct {
	RoomId   string
	SenderId string
	VideoURL string
}

type RemoveFromPlaylistResponse struct {
	Queue []string
	Conns []*websocket.Conn
}

func (s service) RemoveFromPlaylist(ctx context.Context, params *RemoveFromPlaylistParams) (RemoveFromPlaylistResponse, error) {
	if err := s.checkAuthority(params.RoomId, params.SenderId); err != nil {
		return RemoveFromPlaylistResponse{}, err
	}

	if err := s.roomRepo.RemoveFromQueue(ctx, &room.QueueVideoParams{
		RoomId:   params.RoomId,
		VideoURL: params.VideoURL,
	}); err != nil {
		return RemoveFromPlaylistResponse{}, s.mapRoomRepoError(err)
	}

	queue, err := s.roomRepo.GetQueue(ctx, params.RoomId)
	if err != nil {
		return RemoveFromPlaylistResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	return RemoveFromPlaylistResponse{
		Queue: queue,
		Conns: s.getConns(ctx, params.RoomId),
	}, nil
}

type MovePlaylistItemParams struct {
	RoomId    string
	SenderId  string
	VideoURL  string
	Direction string
}

type MovePlaylistItemResponse struct {
	Queue []string
	Conns []*websocket.Conn
}

func (s service) MovePlaylistItem(ctx context.Context, params *MovePlaylistItemParams) (MovePlaylistItemResponse, error) {
	if err := s.checkAuthority(params.RoomId, params.SenderId); err != nil {
		return MovePlaylistItemResponse{}, err
	}

	var direction int
	switch params.Direction {
	case "up":
		direction = -1
	case "down":
		direction = 1
	default:
		return MovePlaylistItemResponse{}, ErrInvalidMove
	}

	if err := s.roomRepo.SwapQueueNeighbors(ctx, &room.SwapQueueNeighborsParams{
		RoomId:    params.RoomId,
		VideoURL:  params.VideoURL,
		Direction: direction,
	}); err != nil {
		return MovePlaylistItemResponse{}, s.mapRoomRepoError(err)
	}

	queue, err := s.roomRepo.GetQueue(ctx, params.RoomId)
	if err != nil {
		return MovePlaylistItemResponse{}, fmt.Errorf("failed to get queue: %w", err)
	}

	return MovePlaylistItemResponse{
		Queue: queue,
		Conns: s.getConns(ctx, params.RoomId),
	}, nil
}

type ReportPlayerStateParams struct {
	RoomId   string
	SenderId string
	Status   string
	Time     int
}

type ReportPlayerStateResponse struct {
	Player Player
	Conns  []*websocket.Conn
}

// ReportPlayerState stores the authorized reporter's player snapshot
// verbatim and fans it out, reporter included.
func (s service) ReportPlayerState(ctx context.Context, params *ReportPlayerStateParams) (ReportPlayerStateResponse, error) {
	if err := s.checkAuthority(params.RoomId, params.SenderId); err != nil {
		return ReportPlayerStateResponse{}, err
	}

	status := session.PlayerStatus(params.Status)
	switch status {
	case session.StatusUnstarted, session.StatusPlaying, session.StatusPaused:
	default:
		return ReportPlayerStateResponse{}, ErrInvalidPlayerStatus
	}

	player := session.Player{
		Status:      status,
		Time:        params.Time,
		LastUpdated: time.Now(),
	}
	if err := s.sessionRepo.SetPlayer(params.RoomId, player); err != nil {
		return ReportPlayerStateResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	return ReportPlayerStateResponse{
		Player: toPlayer(player),
		Conns:  s.getConns(ctx, params.RoomId),
	}, nil
}

type InitialStateResponse struct {
	Player   Player
	VideoURL string
}

func (s service) GetInitialState(ctx context.Context, roomId string) (InitialStateResponse, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return InitialStateResponse{}, s.mapRoomRepoError(err)
	}

	return InitialStateResponse{
		Player:   s.getPlayer(ctx, roomId),
		VideoURL: rm.VideoURL,
	}, nil
}
