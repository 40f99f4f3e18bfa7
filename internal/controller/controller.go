package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/message"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/validator"
	"github.com/watchroom/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoomState(context.Context, string) (room.RoomView, error)
	DeleteRoom(context.Context, *room.DeleteRoomParams) error
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	DisconnectMember(context.Context, *websocket.Conn) (room.DisconnectMemberResponse, error)
	UpdateUsername(context.Context, *room.UpdateUsernameParams) (room.UpdateUsernameResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	GetMessages(context.Context, string) ([]message.Message, error)
	ChangeVideo(context.Context, *room.ChangeVideoParams) (room.ChangeVideoResponse, error)
	AddToPlaylist(context.Context, *room.AddToPlaylistParams) (room.AddToPlaylistResponse, error)
	PlayNext(context.Context, *room.PlayNextParams) (room.PlayNextResponse, error)
	RemoveFromPlaylist(context.Context, *room.RemoveFromPlaylistParams) (room.RemoveFromPlaylistResponse, error)
	MovePlaylistItem(context.Context, *room.MovePlaylistItemParams) (room.MovePlaylistItemResponse, error)
	ReportPlayerState(context.Context, *room.ReportPlayerStateParams) (room.ReportPlayerStateResponse, error)
	GetInitialState(context.Context, string) (room.InitialStateResponse, error)
	PromoteMember(context.Context, *room.ModerationParams) (room.RoleChangeResponse, error)
	DemoteMember(context.Context, *room.ModerationParams) (room.RoleChangeResponse, error)
	KickMember(context.Context, *room.ModerationParams) (room.RemovalResponse, error)
	BanMember(context.Context, *room.ModerationParams) (room.BanResponse, error)
	StartScreenShare(context.Context, *room.StartScreenShareParams) (room.StartScreenShareResponse, error)
	StopScreenShare(context.Context, *room.StopScreenShareParams) (room.StopScreenShareResponse, error)
	RelaySignal(context.Context, *room.RelaySignalParams) (room.RelaySignalResponse, error)
	RequestScreenShare(context.Context, *room.RequestScreenShareParams) (room.RequestScreenShareResponse, error)
	RespondScreenShare(context.Context, *room.RespondScreenShareParams) (room.RespondScreenShareResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter
	connLocks   *connLocks
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		logger:      logger,
		connLocks:   newConnLocks(),
	}
	c.wsmux = c.getWSRouter()

	return c
}

func (c controller) generateTimeBasedId() string {
	return uuid.NewString() + "-" + time.Now().Format("15:04:05.000")
}
