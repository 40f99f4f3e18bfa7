package room

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/watchroom/server/internal/repository/connection/inmemory"
	"github.com/watchroom/server/internal/repository/message"
	"github.com/watchroom/server/internal/repository/message/buffer"
	roomRedis "github.com/watchroom/server/internal/repository/room/redis"
	"github.com/watchroom/server/internal/repository/session"
	sessionInmemory "github.com/watchroom/server/internal/repository/session/inmemory"
)

type fakeMessageRepo struct {
	mu        sync.Mutex
	stored    []message.Message
	inserts   int
	insertErr error
}

func (f *fakeMessageRepo) InsertMessages(_ context.Context, msgs []message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserts++
	f.stored = append(f.stored, msgs...)

	return nil
}

func (f *fakeMessageRepo) GetMessagesByRoom(_ context.Context, roomId string) ([]message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []message.Message
	for _, msg := range f.stored {
		if msg.RoomId == roomId {
			out = append(out, msg)
		}
	}

	return out, nil
}

func (f *fakeMessageRepo) DeleteMessagesByRoom(_ context.Context, roomId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.stored[:0]
	for _, msg := range f.stored {
		if msg.RoomId != roomId {
			kept = append(kept, msg)
		}
	}
	f.stored = kept

	return nil
}

func (f *fakeMessageRepo) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.inserts
}

type testEnv struct {
	service *service
	msgRepo *fakeMessageRepo
	buffer  *buffer.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	msgRepo := &fakeMessageRepo{}
	msgBuffer := buffer.New()

	svc := NewService(
		roomRedis.NewRepo(rc, logger),
		msgRepo,
		msgBuffer,
		sessionInmemory.NewRepo(logger),
		connInmemory.NewRepo(),
		logger,
		&Config{
			BufferCapacity: 25,
			FlushInterval:  time.Minute,
			ReapInterval:   time.Minute,
		},
	)

	return &testEnv{service: svc, msgRepo: msgRepo, buffer: msgBuffer}
}

func (e *testEnv) createRoom(t *testing.T, hostId, hostUsername string) string {
	t.Helper()

	resp, err := e.service.CreateRoom(context.Background(), &CreateRoomParams{
		Name:            "movienight",
		HostId:          hostId,
		HostUsername:    hostUsername,
		DurationMinutes: 60,
	})
	require.NoError(t, err)

	return resp.RoomId
}

func (e *testEnv) join(t *testing.T, roomId, userId, username string) (JoinRoomResponse, *websocket.Conn) {
	t.Helper()

	conn := &websocket.Conn{}
	resp, err := e.service.JoinRoom(context.Background(), &JoinRoomParams{
		RoomId:   roomId,
		UserId:   userId,
		Username: username,
		Conn:     conn,
	})
	require.NoError(t, err)

	return resp, conn
}

func (e *testEnv) promote(t *testing.T, roomId, hostId, targetId string) {
	t.Helper()

	_, err := e.service.PromoteMember(context.Background(), &ModerationParams{
		RoomId:   roomId,
		SenderId: hostId,
		TargetId: targetId,
	})
	require.NoError(t, err)
}

func TestJoinRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")

	hostResp, _ := env.join(t, roomId, "host-1", "ignored")
	assert.Equal(t, session.RoleHost, hostResp.JoinedMember.Role)
	assert.Equal(t, "alice", hostResp.JoinedMember.Username, "host keeps the durable username")
	assert.Len(t, hostResp.Members, 1)
	assert.Equal(t, session.StatusUnstarted, hostResp.Player.Status)

	participantResp, _ := env.join(t, roomId, "user-2", "bob")
	assert.Equal(t, session.RoleParticipant, participantResp.JoinedMember.Role)
	assert.Len(t, participantResp.Members, 2)

	// first-time joiner lands in the durable participant list
	view, err := env.service.GetRoomState(ctx, roomId)
	require.NoError(t, err)
	require.Len(t, view.Participants, 1)
	assert.Equal(t, "user-2", view.Participants[0].UserId)

	// double join
	_, err = env.service.JoinRoom(ctx, &JoinRoomParams{
		RoomId:   roomId,
		UserId:   "user-2",
		Username: "bob",
		Conn:     &websocket.Conn{},
	})
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	// unknown room
	_, err = env.service.JoinRoom(ctx, &JoinRoomParams{
		RoomId:   "missing",
		UserId:   "user-3",
		Username: "carol",
		Conn:     &websocket.Conn{},
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSingleConnectedHost(t *testing.T) {
	env := newTestEnv(t)

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "user-2", "bob")
	env.join(t, roomId, "user-3", "carol")

	hosts := 0
	for _, member := range env.service.getMembers(roomId) {
		if member.Role == session.RoleHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestAuthority(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "mod-1", "bob")
	env.join(t, roomId, "user-1", "carol")
	env.promote(t, roomId, "host-1", "mod-1")

	// while the host is connected only the host holds authority
	assert.True(t, env.service.isAuthorized(roomId, "host-1"))
	assert.False(t, env.service.isAuthorized(roomId, "mod-1"))
	assert.False(t, env.service.isAuthorized(roomId, "user-1"))

	_, err := env.service.ChangeVideo(ctx, &ChangeVideoParams{
		RoomId:   roomId,
		SenderId: "mod-1",
		VideoURL: "v1",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// host drops off, authority falls to the connected moderator
	_, err = env.service.LeaveRoom(ctx, &LeaveRoomParams{RoomId: roomId, UserId: "host-1"})
	require.NoError(t, err)

	assert.True(t, env.service.isAuthorized(roomId, "mod-1"))
	assert.False(t, env.service.isAuthorized(roomId, "user-1"))

	changeVideoResp, err := env.service.ChangeVideo(ctx, &ChangeVideoParams{
		RoomId:   roomId,
		SenderId: "mod-1",
		VideoURL: "v1",
	})
	require.NoError(t, err)
	assert.Equal(t, "v1", changeVideoResp.VideoURL)
	assert.Equal(t, session.StatusPlaying, changeVideoResp.Player.Status)

	// host comes back and reclaims exclusive authority
	env.join(t, roomId, "host-1", "alice")
	assert.False(t, env.service.isAuthorized(roomId, "mod-1"))
	assert.True(t, env.service.isAuthorized(roomId, "host-1"))
}

func TestUpdateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	env.join(t, roomId, "user-2", "bob")

	_, err := env.service.UpdateUsername(ctx, &UpdateUsernameParams{
		RoomId:   roomId,
		UserId:   "user-2",
		Username: "x",
	})
	assert.ErrorIs(t, err, ErrInvalidUsername)

	// case-insensitive collision with the host
	_, err = env.service.UpdateUsername(ctx, &UpdateUsernameParams{
		RoomId:   roomId,
		UserId:   "user-2",
		Username: "ALICE",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	updateUsernameResp, err := env.service.UpdateUsername(ctx, &UpdateUsernameParams{
		RoomId:   roomId,
		UserId:   "user-2",
		Username: "robert",
	})
	require.NoError(t, err)
	assert.Equal(t, "robert", updateUsernameResp.UpdatedMember.Username)

	// host rename lands in the durable record
	_, err = env.service.UpdateUsername(ctx, &UpdateUsernameParams{
		RoomId:   roomId,
		UserId:   "host-1",
		Username: "alicia",
	})
	require.NoError(t, err)
	view, err := env.service.GetRoomState(ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, "alicia", view.Host.Username)
}

func TestDisconnectMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roomId := env.createRoom(t, "host-1", "alice")
	env.join(t, roomId, "host-1", "alice")
	joinResp, conn := env.join(t, roomId, "user-2", "bob")

	// user-2 shares, then the socket dies
	_, err := env.service.StartScreenShare(ctx, &StartScreenShareParams{
		RoomId: roomId,
		ConnId: joinResp.ConnId,
	})
	require.NoError(t, err)

	disconnectResp, err := env.service.DisconnectMember(ctx, conn)
	require.NoError(t, err)
	require.Len(t, disconnectResp.Departed, 1)
	assert.Equal(t, roomId, disconnectResp.Departed[0].RoomId)
	assert.True(t, disconnectResp.Departed[0].SharerStopped)
	assert.Len(t, disconnectResp.Departed[0].Members, 1)

	// a connection that never joined cleans up to nothing
	unknownResp, err := env.service.DisconnectMember(ctx, &websocket.Conn{})
	require.NoError(t, err)
	assert.Empty(t, unknownResp.Departed)
}
