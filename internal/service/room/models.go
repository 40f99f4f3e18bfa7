package room

import (
	"time"

	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/session"
)

type Member struct {
	UserId   string       `json:"userId"`
	Username string       `json:"username"`
	Role     session.Role `json:"role"`
	ConnId   string       `json:"connectionId"`
}

type Player struct {
	Status      session.PlayerStatus `json:"status"`
	Time        int                  `json:"time"`
	LastUpdated int64                `json:"lastUpdated"`
}

func toPlayer(p session.Player) Player {
	return Player{
		Status:      p.Status,
		Time:        p.Time,
		LastUpdated: p.LastUpdated.UnixMilli(),
	}
}

func toMember(e session.Entry) Member {
	return Member{
		UserId:   e.UserId,
		Username: e.Username,
		Role:     e.Role,
		ConnId:   e.ConnId,
	}
}

type RoomView struct {
	RoomId       string          `json:"roomId"`
	Name         string          `json:"name"`
	Host         room.RoomUser   `json:"host"`
	Moderators   []room.RoomUser `json:"moderators"`
	Participants []room.RoomUser `json:"participants"`
	BannedUsers  []string        `json:"bannedUsers"`
	VideoURL     string          `json:"videoUrl"`
	Queue        []string        `json:"queue"`
	History      []string        `json:"history"`
	CreatedAt    time.Time       `json:"createdAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}
