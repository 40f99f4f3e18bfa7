package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getExpirationIndexKey() string {
	return "rooms:by-expiration"
}

func (r repo) roomKeys(roomId string) []string {
	return []string{
		r.getRoomKey(roomId),
		r.getModeratorsKey(roomId),
		r.getParticipantsKey(roomId),
		r.getUsernamesKey(roomId),
		r.getBannedKey(roomId),
		r.getQueueKey(roomId),
		r.getHistoryKey(roomId),
	}
}

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	pipe.HSet(ctx, r.getRoomKey(params.RoomId), map[string]any{
		"name":          params.Name,
		"host_id":       params.HostId,
		"host_username": params.HostUsername,
		"video_url":     params.VideoURL,
		"created_at":    params.CreatedAt.Unix(),
		"expires_at":    params.ExpiresAt.Unix(),
		"is_active":     true,
	})
	pipe.ZAdd(ctx, r.getExpirationIndexKey(), redis.Z{
		Score:  float64(params.ExpiresAt.Unix()),
		Member: params.RoomId,
	})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	var rm room.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Scan(&rm); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	if rm.HostUsername == "" {
		return room.Room{}, room.ErrRoomNotFound
	}

	return rm, nil
}

func (r repo) RoomExists(ctx context.Context, roomId string) (bool, error) {
	exists, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return exists != 0, nil
}

func (r repo) UpdateRoomVideo(ctx context.Context, params *room.UpdateRoomVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	key := r.getRoomKey(params.RoomId)

	exists, err := r.rc.Exists(ctx, key).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}
	if exists == 0 {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, key, "video_url", params.VideoURL).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) UpdateHostUsername(ctx context.Context, params *room.UpdateHostUsernameParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	key := r.getRoomKey(params.RoomId)

	exists, err := r.rc.Exists(ctx, key).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}
	if exists == 0 {
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, key, "host_username", params.Username).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) DeleteRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	pipe := r.rc.TxPipeline()

	pipe.Del(ctx, r.roomKeys(roomId)...)
	pipe.ZRem(ctx, r.getExpirationIndexKey(), roomId)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetExpiredRoomIds(ctx context.Context, before time.Time) ([]string, error) {
	roomIds, err := r.rc.ZRangeByScore(ctx, r.getExpirationIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconvUnix(before),
	}).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return roomIds, nil
}
