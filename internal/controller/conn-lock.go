package controller

import (
	"sync"

	"github.com/gorilla/websocket"
)

// connLocks hands out one mutex per live connection so writes to it are
// serialized. Handlers run on their own connection's read loop, so two
// members acting at once would otherwise write to a shared third
// connection concurrently, which gorilla/websocket forbids.
type connLocks struct {
	mu    sync.Mutex
	locks map[*websocket.Conn]*sync.Mutex
}

func newConnLocks() *connLocks {
	return &connLocks{
		locks: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (cl *connLocks) get(conn *websocket.Conn) *sync.Mutex {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	lock, ok := cl.locks[conn]
	if !ok {
		lock = &sync.Mutex{}
		cl.locks[conn] = lock
	}

	return lock
}

// forget drops the connection's mutex once the connection is closed and
// unregistered. Writers still holding the old mutex finish against a
// closed conn, which fails cleanly.
func (cl *connLocks) forget(conn *websocket.Conn) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	delete(cl.locks, conn)
}
