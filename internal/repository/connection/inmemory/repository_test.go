package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/connection"
)

func TestAddAndGet(t *testing.T) {
	r := NewRepo()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	require.NoError(t, r.Add(conn1, "c1"))
	require.NoError(t, r.Add(conn2, "c2"))

	got, err := r.GetConn("c1")
	require.NoError(t, err)
	assert.Same(t, conn1, got)

	connId, err := r.GetConnId(conn2)
	require.NoError(t, err)
	assert.Equal(t, "c2", connId)

	_, err = r.GetConn("ghost")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = r.GetConnId(&websocket.Conn{})
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestAddDuplicate(t *testing.T) {
	r := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "c1"))

	assert.ErrorIs(t, r.Add(conn, "c2"), connection.ErrAlreadyExists)
	assert.ErrorIs(t, r.Add(&websocket.Conn{}, "c1"), connection.ErrAlreadyExists)
}

func TestRemoveByConn(t *testing.T) {
	r := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "c1"))

	connId, err := r.RemoveByConn(conn)
	require.NoError(t, err)
	assert.Equal(t, "c1", connId)

	// both directions are gone
	_, err = r.GetConn("c1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	_, err = r.GetConnId(conn)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	_, err = r.RemoveByConn(conn)
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestRemoveByConnId(t *testing.T) {
	r := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "c1"))

	got, err := r.RemoveByConnId("c1")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	_, err = r.GetConnId(conn)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	_, err = r.RemoveByConnId("c1")
	assert.ErrorIs(t, err, connection.ErrNotFound)

	// the id can be reused once removed
	require.NoError(t, r.Add(conn, "c1"))
}
