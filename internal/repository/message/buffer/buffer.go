// Package buffer holds chat messages pending their durable write. Contents
// are lost if the process dies before a flush; that loss is accepted.
package buffer

import (
	"sync"

	"github.com/watchroom/server/internal/repository/message"
)

type Buffer struct {
	mu      sync.Mutex
	pending map[string][]message.Message
}

func New() *Buffer {
	return &Buffer{
		pending: make(map[string][]message.Message),
	}
}

// Enqueue appends a message to the room's pending buffer and returns the
// buffer length after the append.
func (b *Buffer) Enqueue(roomId string, msg message.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending[roomId] = append(b.pending[roomId], msg)

	return len(b.pending[roomId])
}

// Pending returns a copy of the room's not-yet-flushed messages in
// enqueue order.
func (b *Buffer) Pending(roomId string) []message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending := b.pending[roomId]
	out := make([]message.Message, len(pending))
	copy(out, pending)

	return out
}

// Drain atomically swaps out the room's buffer for an empty one and
// returns the drained messages. Messages enqueued after Drain returns land
// in the fresh buffer.
func (b *Buffer) Drain(roomId string) []message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.pending[roomId]
	delete(b.pending, roomId)

	return drained
}

// Restore puts drained messages back at the front of the room's buffer,
// ahead of anything enqueued since the drain. Used when a durable write of
// drained messages fails.
func (b *Buffer) Restore(roomId string, msgs []message.Message) {
	if len(msgs) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending[roomId] = append(msgs, b.pending[roomId]...)
}

// Discard drops the room's pending messages without returning them.
func (b *Buffer) Discard(roomId string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.pending, roomId)
}

// RoomIds lists rooms with a non-empty buffer.
func (b *Buffer) RoomIds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	roomIds := make([]string, 0, len(b.pending))
	for roomId := range b.pending {
		roomIds = append(roomIds, roomId)
	}

	return roomIds
}
