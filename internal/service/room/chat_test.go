package room

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/message"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "user-2", "bob")

	sendResp, err := env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "user-2",
		Content:  "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", sendResp.Message.Content)
	assert.Equal(t, "bob", sendResp.Message.SenderName)
	assert.Equal(t, "Participant", sendResp.Message.SenderRole)
	assert.NotEmpty(t, sendResp.Message.Id)
	assert.Len(t, sendResp.Conns, 2)

	_, err = env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "user-2",
		Content:  "   ",
	})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "user-2",
		Content:  strings.Repeat("a", 5001),
	})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "stranger",
		Content:  "hi",
	})
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestBufferFlushAtCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")

	for i := 0; i < 24; i++ {
		_, err := env.service.SendMessage(ctx, &SendMessageParams{
			RoomId:   roomId,
			SenderId: "host-1",
			Content:  fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, env.msgRepo.insertCount(), "no flush below capacity")
	assert.Len(t, env.buffer.Pending(roomId), 24)

	// message 25 fills the buffer and triggers exactly one flush
	_, err := env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "host-1",
		Content:  "message 24",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.msgRepo.insertCount())
	assert.Empty(t, env.buffer.Pending(roomId))

	msgs, err := env.service.GetMessages(ctx, roomId)
	require.NoError(t, err)
	assert.Len(t, msgs, 25)
}

func TestGetMessagesMergesPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")

	_, err := env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "host-1",
		Content:  "buffered",
	})
	require.NoError(t, err)
	require.NoError(t, env.service.FlushRoom(ctx, roomId))

	_, err = env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "host-1",
		Content:  "pending",
	})
	require.NoError(t, err)

	msgs, err := env.service.GetMessages(ctx, roomId)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "buffered", msgs[0].Content)
	assert.Equal(t, "pending", msgs[1].Content)

	_, err = env.service.GetMessages(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestFlushDiscardsDeletedRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.buffer.Enqueue("ghost", message.Message{
		Id:      "m1",
		RoomId:  "ghost",
		Content: "orphan",
	})

	require.NoError(t, env.service.FlushRoom(ctx, "ghost"))
	assert.Equal(t, 0, env.msgRepo.insertCount(), "messages of a deleted room are dropped, not written")
	assert.Empty(t, env.buffer.Pending("ghost"))
}

func TestFlushRestoresOnInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")

	_, err := env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "host-1",
		Content:  "precious",
	})
	require.NoError(t, err)

	env.msgRepo.insertErr = fmt.Errorf("cassandra down")
	require.Error(t, env.service.FlushRoom(ctx, roomId))
	assert.Len(t, env.buffer.Pending(roomId), 1, "failed flush keeps the messages buffered")

	env.msgRepo.insertErr = nil
	require.NoError(t, env.service.FlushRoom(ctx, roomId))
	assert.Empty(t, env.buffer.Pending(roomId))
}

func TestReapExpiredRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")

	_, err := env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "host-1",
		Content:  "soon gone",
	})
	require.NoError(t, err)
	require.NoError(t, env.service.FlushRoom(ctx, roomId))

	// not yet expired
	reaped, err := env.service.ReapExpiredRooms(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, reaped)

	reaped, err = env.service.ReapExpiredRooms(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	// the room and its messages are gone
	_, err = env.service.JoinRoom(ctx, &JoinRoomParams{
		RoomId:   roomId,
		UserId:   "user-2",
		Username: "bob",
		Conn:     nil,
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	msgs, err := env.msgRepo.GetMessagesByRoom(ctx, roomId)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestDeleteRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "user-2", "bob")

	_, err := env.service.SendMessage(ctx, &SendMessageParams{
		RoomId:   roomId,
		SenderId: "user-2",
		Content:  "bye",
	})
	require.NoError(t, err)

	err = env.service.DeleteRoom(ctx, &DeleteRoomParams{RoomId: roomId, RequesterId: "user-2"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.service.DeleteRoom(ctx, &DeleteRoomParams{RoomId: roomId, RequesterId: "host-1"}))

	_, err = env.service.GetRoomState(ctx, roomId)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, env.buffer.Pending(roomId))
}
