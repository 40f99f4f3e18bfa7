package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watchroom/server/internal/repository/message"
)

func msg(id string) message.Message {
	return message.Message{Id: id, Content: id}
}

func ids(msgs []message.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Id)
	}
	return out
}

func TestEnqueueAndPending(t *testing.T) {
	b := New()

	assert.Equal(t, 1, b.Enqueue("r1", msg("m1")))
	assert.Equal(t, 2, b.Enqueue("r1", msg("m2")))
	assert.Equal(t, 1, b.Enqueue("r2", msg("m3")))

	assert.Equal(t, []string{"m1", "m2"}, ids(b.Pending("r1")))
	assert.Empty(t, b.Pending("ghost"))

	// Pending returns a copy; mutating it leaves the buffer alone
	pending := b.Pending("r1")
	pending[0].Id = "mutated"
	assert.Equal(t, "m1", b.Pending("r1")[0].Id)
}

func TestDrain(t *testing.T) {
	b := New()

	b.Enqueue("r1", msg("m1"))
	b.Enqueue("r1", msg("m2"))

	drained := b.Drain("r1")
	assert.Equal(t, []string{"m1", "m2"}, ids(drained))
	assert.Empty(t, b.Pending("r1"))

	// a later enqueue lands in the fresh buffer
	b.Enqueue("r1", msg("m3"))
	assert.Equal(t, []string{"m3"}, ids(b.Pending("r1")))

	assert.Empty(t, b.Drain("ghost"))
}

func TestRestorePrepends(t *testing.T) {
	b := New()

	b.Enqueue("r1", msg("m1"))
	b.Enqueue("r1", msg("m2"))
	drained := b.Drain("r1")

	// something arrives while the drained batch is in flight
	b.Enqueue("r1", msg("m3"))

	b.Restore("r1", drained)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(b.Pending("r1")))

	b.Restore("r1", nil)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(b.Pending("r1")))
}

func TestDiscard(t *testing.T) {
	b := New()

	b.Enqueue("r1", msg("m1"))
	b.Enqueue("r2", msg("m2"))

	b.Discard("r1")
	assert.Empty(t, b.Pending("r1"))
	assert.Equal(t, []string{"m2"}, ids(b.Pending("r2")))
}

func TestRoomIds(t *testing.T) {
	b := New()

	assert.Empty(t, b.RoomIds())

	b.Enqueue("r1", msg("m1"))
	b.Enqueue("r2", msg("m2"))
	assert.ElementsMatch(t, []string{"r1", "r2"}, b.RoomIds())

	b.Drain("r1")
	assert.Equal(t, []string{"r2"}, b.RoomIds())
}
