package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getModeratorsKey(roomId string) string {
	return "room:" + roomId + ":moderators"
}

func (r repo) getParticipantsKey(roomId string) string {
	return "room:" + roomId + ":participants"
}

func (r repo) getUsernamesKey(roomId string) string {
	return "room:" + roomId + ":usernames"
}

func (r repo) getBannedKey(roomId string) string {
	return "room:" + roomId + ":banned"
}

func (r repo) isInList(ctx context.Context, key, userId string) (bool, error) {
	if err := r.rc.ZScore(ctx, key, userId).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r repo) getList(ctx context.Context, roomId, key string) ([]room.RoomUser, error) {
	userIds, err := r.rc.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(userIds) == 0 {
		return []room.RoomUser{}, nil
	}

	usernames, err := r.rc.HGetAll(ctx, r.getUsernamesKey(roomId)).Result()
	if err != nil {
		return nil, err
	}

	users := make([]room.RoomUser, 0, len(userIds))
	for _, userId := range userIds {
		users = append(users, room.RoomUser{
			UserId:   userId,
			Username: usernames[userId],
		})
	}

	return users, nil
}

func (r repo) addUserToList(ctx context.Context, listKey string, params *room.AddUserToListParams) error {
	pipe := r.rc.TxPipeline()

	r.appendToList(ctx, pipe, listKey, params.UserId)
	pipe.HSet(ctx, r.getUsernamesKey(params.RoomId), params.UserId, params.Username)

	return r.executePipe(ctx, pipe)
}

func (r repo) AddModeratorToList(ctx context.Context, params *room.AddUserToListParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.addUserToList(ctx, r.getModeratorsKey(params.RoomId), params); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) AddParticipantToList(ctx context.Context, params *room.AddUserToListParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.addUserToList(ctx, r.getParticipantsKey(params.RoomId), params); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// PromoteUser moves a user from the participants list to the tail of the
// moderators list in a single scripted step.
func (r repo) PromoteUser(ctx context.Context, params *room.MoveUserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	return r.moveUser(ctx, r.getParticipantsKey(params.RoomId), r.getModeratorsKey(params.RoomId), params.UserId)
}

// DemoteUser is the inverse of PromoteUser.
func (r repo) DemoteUser(ctx context.Context, params *room.MoveUserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	return r.moveUser(ctx, r.getModeratorsKey(params.RoomId), r.getParticipantsKey(params.RoomId), params.UserId)
}

func (r repo) moveUser(ctx context.Context, fromKey, toKey, userId string) error {
	moved, err := r.rc.EvalSha(ctx, r.moveScript, []string{fromKey, toKey}, userId).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if moved == 0 {
		return room.ErrUserNotFound
	}

	return nil
}

func (r repo) IsModerator(ctx context.Context, params *room.UserParams) (bool, error) {
	return r.isInList(ctx, r.getModeratorsKey(params.RoomId), params.UserId)
}

func (r repo) IsParticipant(ctx context.Context, params *room.UserParams) (bool, error) {
	return r.isInList(ctx, r.getParticipantsKey(params.RoomId), params.UserId)
}

func (r repo) GetModerators(ctx context.Context, roomId string) ([]room.RoomUser, error) {
	users, err := r.getList(ctx, roomId, r.getModeratorsKey(roomId))
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return users, nil
}

func (r repo) GetParticipants(ctx context.Context, roomId string) ([]room.RoomUser, error) {
	users, err := r.getList(ctx, roomId, r.getParticipantsKey(roomId))
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return users, nil
}

func (r repo) SetUserUsername(ctx context.Context, params *room.SetUsernameParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.rc.HSet(ctx, r.getUsernamesKey(params.RoomId), params.UserId, params.Username).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetUsernames(ctx context.Context, roomId string) (map[string]string, error) {
	usernames, err := r.rc.HGetAll(ctx, r.getUsernamesKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return usernames, nil
}

// BanUser removes the user from both role lists and adds it to the banned
// set. Every sub-operation is idempotent, so banning an absent or
// already-banned user succeeds as a no-op.
func (r repo) BanUser(ctx context.Context, params *room.UserParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	pipe.ZRem(ctx, r.getModeratorsKey(params.RoomId), params.UserId)
	pipe.ZRem(ctx, r.getParticipantsKey(params.RoomId), params.UserId)
	pipe.HDel(ctx, r.getUsernamesKey(params.RoomId), params.UserId)
	pipe.SAdd(ctx, r.getBannedKey(params.RoomId), params.UserId)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) IsBanned(ctx context.Context, params *room.UserParams) (bool, error) {
	banned, err := r.rc.SIsMember(ctx, r.getBannedKey(params.RoomId), params.UserId).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return banned, nil
}

func (r repo) GetBannedUsers(ctx context.Context, roomId string) ([]string, error) {
	banned, err := r.rc.SMembers(ctx, r.getBannedKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return banned, nil
}
