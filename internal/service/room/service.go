package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/message"
	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/session"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotInRoom           = errors.New("you are not in this room")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUserBanned          = errors.New("user is banned from this room")
	ErrAlreadyInRoom       = errors.New("user is already in the room")
	ErrUsernameTaken       = errors.New("username is already taken in the room")
	ErrInvalidUsername     = errors.New("username must be between 2 and 20 characters")
	ErrInvalidMessage      = errors.New("message is empty or too long")
	ErrInvalidPlayerStatus = errors.New("invalid player status")
	ErrVideoNotFound       = errors.New("video not found in playlist")
	ErrInvalidMove         = errors.New("invalid move operation")
	ErrHostNotConnected    = errors.New("host is not connected")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	RoomExists(context.Context, string) (bool, error)
	UpdateRoomVideo(context.Context, *room.UpdateRoomVideoParams) error
	UpdateHostUsername(context.Context, *room.UpdateHostUsernameParams) error
	DeleteRoom(context.Context, string) error
	GetExpiredRoomIds(context.Context, time.Time) ([]string, error)
	// role lists
	AddModeratorToList(context.Context, *room.AddUserToListParams) error
	AddParticipantToList(context.Context, *room.AddUserToListParams) error
	PromoteUser(context.Context, *room.MoveUserParams) error
	DemoteUser(context.Context, *room.MoveUserParams) error
	IsModerator(context.Context, *room.UserParams) (bool, error)
	IsParticipant(context.Context, *room.UserParams) (bool, error)
	GetModerators(context.Context, string) ([]room.RoomUser, error)
	GetParticipants(context.Context, string) ([]room.RoomUser, error)
	SetUserUsername(context.Context, *room.SetUsernameParams) error
	GetUsernames(context.Context, string) (map[string]string, error)
	BanUser(context.Context, *room.UserParams) error
	IsBanned(context.Context, *room.UserParams) (bool, error)
	GetBannedUsers(context.Context, string) ([]string, error)
	// queue and history
	AppendToQueue(context.Context, *room.QueueVideoParams) (bool, error)
	RemoveFromQueue(context.Context, *room.QueueVideoParams) error
	GetQueue(context.Context, string) ([]string, error)
	SwapQueueNeighbors(context.Context, *room.SwapQueueNeighborsParams) error
	AppendToHistory(context.Context, *room.QueueVideoParams) error
	GetHistory(context.Context, string) ([]string, error)
}

type iMessageRepo interface {
	InsertMessages(context.Context, []message.Message) error
	GetMessagesByRoom(context.Context, string) ([]message.Message, error)
	DeleteMessagesByRoom(context.Context, string) error
}

type iMessageBuffer interface {
	Enqueue(roomId string, msg message.Message) int
	Pending(roomId string) []message.Message
	Drain(roomId string) []message.Message
	Restore(roomId string, msgs []message.Message)
	Discard(roomId string)
	RoomIds() []string
}

type iSessionRepo interface {
	AddEntry(roomId string, entry session.Entry) error
	RemoveEntry(roomId, userId string) (bool, error)
	GetEntry(roomId, userId string) (session.Entry, error)
	ListEntries(roomId string) []session.Entry
	SetRole(roomId, userId string, role session.Role) error
	SetUsername(roomId, userId, username string) error
	FindRoomsByConnId(connId string) []string
	FindEntryByConnId(roomId, connId string) (session.Entry, error)
	GetPlayer(roomId string) (session.Player, bool)
	SetPlayer(roomId string, player session.Player) error
	SetSharer(roomId, connId string) error
	GetSharer(roomId string) (string, bool)
	ClearSharer(roomId string)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connId string) error
	RemoveByConn(conn *websocket.Conn) (string, error)
	RemoveByConnId(connId string) (*websocket.Conn, error)
	GetConn(connId string) (*websocket.Conn, error)
	GetConnId(conn *websocket.Conn) (string, error)
}

type Config struct {
	BufferCapacity int
	FlushInterval  time.Duration
	ReapInterval   time.Duration
}

type service struct {
	roomRepo    iRoomRepo
	messageRepo iMessageRepo
	buffer      iMessageBuffer
	sessionRepo iSessionRepo
	connRepo    iConnRepo
	logger      *slog.Logger

	bufferCapacity int
	flushInterval  time.Duration
	reapInterval   time.Duration
}

func NewService(
	roomRepo iRoomRepo,
	messageRepo iMessageRepo,
	buffer iMessageBuffer,
	sessionRepo iSessionRepo,
	connRepo iConnRepo,
	logger *slog.Logger,
	cfg *Config,
) *service {
	return &service{
		roomRepo:       roomRepo,
		messageRepo:    messageRepo,
		buffer:         buffer,
		sessionRepo:    sessionRepo,
		connRepo:       connRepo,
		logger:         logger,
		bufferCapacity: cfg.BufferCapacity,
		flushInterval:  cfg.FlushInterval,
		reapInterval:   cfg.ReapInterval,
	}
}
