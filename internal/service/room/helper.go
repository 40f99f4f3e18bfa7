package room

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/repository/session"
)

func (s service) getMembers(roomId string) []Member {
	entries := s.sessionRepo.ListEntries(roomId)
	members := make([]Member, 0, len(entries))
	for _, entry := range entries {
		members = append(members, toMember(entry))
	}

	return members
}

// getConns collects the live connections of everyone in the room. Entries
// whose connection was already removed are skipped, kicked members linger in
// the session for the duration of their cleanup.
func (s service) getConns(ctx context.Context, roomId string) []*websocket.Conn {
	entries := s.sessionRepo.ListEntries(roomId)
	conns := make([]*websocket.Conn, 0, len(entries))
	for _, entry := range entries {
		conn, err := s.connRepo.GetConn(entry.ConnId)
		if err != nil {
			s.logger.DebugContext(ctx, "skipping entry without connection", "connId", entry.ConnId)
			continue
		}
		conns = append(conns, conn)
	}

	return conns
}

func (s service) mapRoomRepoError(err error) error {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, room.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, room.ErrVideoNotFound):
		return ErrVideoNotFound
	case errors.Is(err, room.ErrInvalidMove):
		return ErrInvalidMove
	default:
		return err
	}
}

func (s service) getEntry(roomId, userId string) (session.Entry, error) {
	entry, err := s.sessionRepo.GetEntry(roomId, userId)
	if err != nil {
		return session.Entry{}, ErrNotInRoom
	}

	return entry, nil
}
