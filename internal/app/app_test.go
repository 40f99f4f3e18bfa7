package app

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
	sessionInmemory "github.com/watchroom/server/internal/repository/session/inmemory"
	"github.com/watchroom/server/internal/service/room"
)

type memMessageRepo struct {
	mu     sync.Mutex
	stored map[string][]message.Message
}

func (m *memMessageRepo) InsertMessages(_ context.Context, msgs []message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		m.stored[msg.RoomId] = append(m.stored[msg.RoomId], msg)
	}
	return nil
}

func (m *memMessageRepo) GetMessagesByRoom(_ context.Context, roomId string) ([]message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored[roomId], nil
}

func (m *memMessageRepo) DeleteMessagesByRoom(_ context.Context, roomId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, roomId)
	return nil
}

// TestRoomScenario walks a full room session against the real wiring minus
// the transports: create, join, chat, playlist, playback, disconnect.
func TestRoomScenario(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := room.NewService(
		roomRedis.NewRepo(rc, logger),
		&memMessageRepo{stored: make(map[string][]message.Message)},
		buffer.New(),
		sessionInmemory.NewRepo(logger),
		connInmemory.NewRepo(),
		logger,
		&room.Config{BufferCapacity: 25, FlushInterval: 2 * time.Minute, ReapInterval: time.Minute},
	)

	ctx := context.Background()

	created, err := service.CreateRoom(ctx, &room.CreateRoomParams{
		Name:            "Movie Night",
		HostId:          "host-1",
		HostUsername:    "alice",
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.RoomId)
	t.Log("room created")

	hostJoin, err := service.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:   created.RoomId,
		UserId:   "host-1",
		Username: "alice",
		Conn:     &websocket.Conn{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Host", string(hostJoin.JoinedMember.Role))

	guestJoin, err := service.JoinRoom(ctx, &room.JoinRoomParams{
		RoomId:   created.RoomId,
		UserId:   "guest-1",
		Username: "bob",
		Conn:     &websocket.Conn{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Participant", string(guestJoin.JoinedMember.Role))
	assert.Len(t, guestJoin.Members, 2)
	t.Log("members joined")

	sent, err := service.SendMessage(ctx, &room.SendMessageParams{
		RoomId:   created.RoomId,
		SenderId: "guest-1",
		Content:  "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", sent.Message.SenderName)
	assert.Len(t, sent.Conns, 2)

	added, err := service.AddToPlaylist(ctx, &room.AddToPlaylistParams{
		RoomId:   created.RoomId,
		SenderId: "guest-1",
		VideoURL: "v1",
	})
	require.NoError(t, err)
	assert.True(t, added.Added)
	assert.Equal(t, []string{"v1"}, added.Queue)
	t.Log("video queued")

	next, err := service.PlayNext(ctx, &room.PlayNextParams{
		RoomId:   created.RoomId,
		SenderId: "host-1",
	})
	require.NoError(t, err)
	assert.True(t, next.Advanced)
	assert.Equal(t, "v1", next.VideoURL)
	assert.Empty(t, next.Queue)
	t.Log("playback advanced")

	left, err := service.LeaveRoom(ctx, &room.LeaveRoomParams{
		RoomId: created.RoomId,
		UserId: "guest-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "guest-1", left.LeftMember.UserId)
	assert.Len(t, left.Members, 1)
	assert.False(t, left.SessionClosed)
	t.Log("guest left")

	state, err := service.GetRoomState(ctx, created.RoomId)
	require.NoError(t, err)
	assert.Equal(t, "v1", state.VideoURL)
	assert.Contains(t, state.History, "v1")
}

func TestAppConfigValidate(t *testing.T) {
	cfg := AppConfig{
		Host:                  "0.0.0.0",
		Port:                  8080,
		LogLevel:              "INFO",
		RedisHost:             "localhost",
		RedisPort:             6379,
		CassandraHosts:        []string{"localhost"},
		CassandraKeyspace:     "watchroom",
		CassandraConsistency:  "LOCAL_QUORUM",
		MessageBufferCapacity: 25,
		MessageFlushInterval:  2 * time.Minute,
		RoomReapInterval:      time.Minute,
	}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.MessageBufferCapacity = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MessageFlushInterval = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.RoomReapInterval = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.CassandraHosts = nil
	assert.Error(t, bad.Validate())
}
