// Package inmemory owns the per-room session state: the presence map, the
// ephemeral player and the screen-share bookkeeping. The record for a room
// disappears when its last presence entry is removed; the durable room is
// untouched.
package inmemory

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/watchroom/server/internal/repository/session"
)

type roomSession struct {
	order   []string
	entries map[string]*session.Entry
	player  *session.Player
	// sharerConnId is the connection currently screen-sharing, if any.
	sharerConnId string
}

type repo struct {
	mu     sync.RWMutex
	rooms  map[string]*roomSession
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*roomSession),
		logger: logger,
	}
}

func (r *repo) AddEntry(roomId string, entry session.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		rs = &roomSession{entries: make(map[string]*session.Entry)}
		r.rooms[roomId] = rs
	}

	if _, ok := rs.entries[entry.UserId]; ok {
		return session.ErrAlreadyExists
	}

	rs.order = append(rs.order, entry.UserId)
	rs.entries[entry.UserId] = &entry

	return nil
}

// RemoveEntry removes a user's presence entry. When the last entry goes,
// the whole in-memory room record (player, sharer bookkeeping) goes with
// it. Returns whether the record was deleted.
func (r *repo) RemoveEntry(roomId, userId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return false, session.ErrRoomNotFound
	}

	if _, ok := rs.entries[userId]; !ok {
		return false, session.ErrUserNotFound
	}

	delete(rs.entries, userId)
	for i, id := range rs.order {
		if id == userId {
			rs.order = append(rs.order[:i], rs.order[i+1:]...)
			break
		}
	}

	if len(rs.entries) == 0 {
		delete(r.rooms, roomId)
		r.logger.Debug("room session removed", "room_id", roomId)
		return true, nil
	}

	return false, nil
}

func (r *repo) GetEntry(roomId, userId string) (session.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return session.Entry{}, session.ErrRoomNotFound
	}

	entry, ok := rs.entries[userId]
	if !ok {
		return session.Entry{}, session.ErrUserNotFound
	}

	return *entry, nil
}

// ListEntries returns presence entries in insertion order, so broadcasts
// are deterministic.
func (r *repo) ListEntries(roomId string) []session.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return []session.Entry{}
	}

	entries := make([]session.Entry, 0, len(rs.order))
	for _, userId := range rs.order {
		entries = append(entries, *rs.entries[userId])
	}

	return entries
}

func (r *repo) SetRole(roomId, userId string, role session.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return session.ErrRoomNotFound
	}

	entry, ok := rs.entries[userId]
	if !ok {
		return session.ErrUserNotFound
	}

	entry.Role = role

	return nil
}

func (r *repo) SetUsername(roomId, userId, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return session.ErrRoomNotFound
	}

	entry, ok := rs.entries[userId]
	if !ok {
		return session.ErrUserNotFound
	}

	entry.Username = username

	return nil
}

// FindRoomsByConnId returns the ids of every room the connection is
// present in, sorted for deterministic disconnect cleanup.
func (r *repo) FindRoomsByConnId(connId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var roomIds []string
	for roomId, rs := range r.rooms {
		for _, entry := range rs.entries {
			if entry.ConnId == connId {
				roomIds = append(roomIds, roomId)
				break
			}
		}
	}
	sort.Strings(roomIds)

	return roomIds
}

func (r *repo) FindEntryByConnId(roomId, connId string) (session.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return session.Entry{}, session.ErrRoomNotFound
	}

	for _, userId := range rs.order {
		if rs.entries[userId].ConnId == connId {
			return *rs.entries[userId], nil
		}
	}

	return session.Entry{}, session.ErrUserNotFound
}

func (r *repo) GetPlayer(roomId string) (session.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok || rs.player == nil {
		return session.Player{}, false
	}

	return *rs.player, true
}

func (r *repo) SetPlayer(roomId string, player session.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return session.ErrRoomNotFound
	}

	rs.player = &player

	return nil
}

func (r *repo) SetSharer(roomId, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomId]
	if !ok {
		return session.ErrRoomNotFound
	}

	rs.sharerConnId = connId

	return nil
}

func (r *repo) GetSharer(roomId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.rooms[roomId]
	if !ok || rs.sharerConnId == "" {
		return "", false
	}

	return rs.sharerConnId, true
}

func (r *repo) ClearSharer(roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rs, ok := r.rooms[roomId]; ok {
		rs.sharerConnId = ""
	}
}
