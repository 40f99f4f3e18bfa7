package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/session"
)

func TestPromoteDemote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "user-2", "bob")
	env.join(t, roomId, "user-3", "carol")

	// only the host can promote
	_, err := env.service.PromoteMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "user-2",
		TargetId: "user-3",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	promoteResp, err := env.service.PromoteMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-2",
	})
	require.NoError(t, err)

	var promoted Member
	for _, member := range promoteResp.Members {
		if member.UserId == "user-2" {
			promoted = member
		}
	}
	assert.Equal(t, session.RoleModerator, promoted.Role)

	view, err := env.service.GetRoomState(ctx, roomId)
	require.NoError(t, err)
	require.Len(t, view.Moderators, 1)
	assert.Equal(t, "user-2", view.Moderators[0].UserId)
	require.Len(t, view.Participants, 1)
	assert.Equal(t, "user-3", view.Participants[0].UserId)

	// promoting someone who is not a participant
	_, err = env.service.PromoteMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-2",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.service.DemoteMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-2",
	})
	require.NoError(t, err)

	view, err = env.service.GetRoomState(ctx, roomId)
	require.NoError(t, err)
	assert.Empty(t, view.Moderators)
	assert.Len(t, view.Participants, 2)
}

func TestKickMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "mod-1", "bob")
	env.join(t, roomId, "user-3", "carol")
	env.promote(t, roomId, "host-1", "mod-1")

	// participants cannot kick
	_, err := env.service.KickMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "user-3",
		TargetId: "mod-1",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	kickResp, err := env.service.KickMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "mod-1",
		TargetId: "user-3",
	})
	require.NoError(t, err)
	assert.NotNil(t, kickResp.TargetConn)
	assert.Len(t, kickResp.Members, 2)

	// kicked user is gone from the session but may rejoin
	_, err = env.service.KickMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-3",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	env.join(t, roomId, "user-3", "carol")
}

func TestKickedSharerStopsShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	joinResp, _ := env.join(t, roomId, "user-2", "bob")

	_, err := env.service.StartScreenShare(ctx, &StartScreenShareParams{
		RoomId: roomId,
		ConnId: joinResp.ConnId,
	})
	require.NoError(t, err)

	kickResp, err := env.service.KickMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-2",
	})
	require.NoError(t, err)
	assert.True(t, kickResp.SharerStopped)
}

func TestBanMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "mod-1", "bob")
	env.join(t, roomId, "user-3", "carol")
	env.promote(t, roomId, "host-1", "mod-1")

	// nobody bans the host, the host does not ban themself
	_, err := env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "mod-1",
		TargetId: "host-1",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "host-1",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	banResp, err := env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "mod-1",
		TargetId: "user-3",
	})
	require.NoError(t, err)
	assert.True(t, banResp.WasConnected)
	assert.Contains(t, banResp.BannedUsers, "user-3")

	// banned user cannot come back
	_, err = env.service.JoinRoom(ctx, &JoinRoomParams{
		RoomId:   roomId,
		UserId:   "user-3",
		Username: "carol",
		Conn:     nil,
	})
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestBanIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "user-2", "bob")

	_, err := env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-2",
	})
	require.NoError(t, err)

	// re-banning the now-absent user is a clean no-op
	banResp, err := env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "user-2",
	})
	require.NoError(t, err)
	assert.False(t, banResp.WasConnected)
	assert.Equal(t, []string{"user-2"}, banResp.BannedUsers)
}

func TestModeratorCannotBanModerator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "mod-1", "bob")
	env.join(t, roomId, "mod-2", "carol")
	env.promote(t, roomId, "host-1", "mod-1")
	env.promote(t, roomId, "host-1", "mod-2")

	_, err := env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "mod-1",
		TargetId: "mod-2",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// the host may ban a moderator
	banResp, err := env.service.BanMember(ctx, &ModerationParams{
		RoomId:   roomId,
		SenderId: "host-1",
		TargetId: "mod-2",
	})
	require.NoError(t, err)
	assert.True(t, banResp.WasConnected)
}
