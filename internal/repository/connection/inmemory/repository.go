package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/connection"
)

// repo is a two-way map between connection ids and live websocket
// connections. It never closes a connection: removal and closing are
// separate so a removal notification can be delivered first.
type repo struct {
	mu       sync.RWMutex
	byConn   map[*websocket.Conn]string
	byConnId map[string]*websocket.Conn
}

func NewRepo() *repo {
	return &repo{
		byConn:   make(map[*websocket.Conn]string),
		byConnId: make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byConn[conn] != "" || r.byConnId[connId] != nil {
		return connection.ErrAlreadyExists
	}

	r.byConn[conn] = connId
	r.byConnId[connId] = conn

	return nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connId, ok := r.byConn[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.byConn, conn)
	delete(r.byConnId, connId)

	return connId, nil
}

func (r *repo) RemoveByConnId(connId string) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byConnId[connId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.byConn, conn)
	delete(r.byConnId, connId)

	return conn, nil
}

func (r *repo) GetConn(connId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byConnId[connId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetConnId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connId, ok := r.byConn[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return connId, nil
}
