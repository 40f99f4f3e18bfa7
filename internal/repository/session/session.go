package session

import (
	"errors"
	"time"
)

var (
	ErrRoomNotFound  = errors.New("room session not found")
	ErrUserNotFound  = errors.New("user not present")
	ErrAlreadyExists = errors.New("user already present")
)

type Role string

const (
	RoleHost        Role = "Host"
	RoleModerator   Role = "Moderator"
	RoleParticipant Role = "Participant"
)

type PlayerStatus string

const (
	StatusUnstarted PlayerStatus = "unstarted"
	StatusPlaying   PlayerStatus = "playing"
	StatusPaused    PlayerStatus = "paused"
)

// Entry is the presence record of one connected user. Role mirrors the
// durable role at join time plus later moderation edits; it is not
// re-derived from storage on every action.
type Entry struct {
	UserId   string
	Username string
	Role     Role
	ConnId   string
}

// Player is a room's ephemeral playback clock. Not persisted; recreated
// lazily as unstarted after a restart.
type Player struct {
	Status      PlayerStatus
	Time        int
	LastUpdated time.Time
}
