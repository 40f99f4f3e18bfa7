package redis

import (
	"context"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getQueueKey(roomId string) string {
	return "room:" + roomId + ":queue"
}

func (r repo) getHistoryKey(roomId string) string {
	return "room:" + roomId + ":history"
}

// AppendToQueue appends a video to the queue tail. Returns false if the
// video is already queued (set semantics, insertion order preserved).
func (r repo) AppendToQueue(ctx context.Context, params *room.QueueVideoParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	added, err := r.appendToList(ctx, r.rc, r.getQueueKey(params.RoomId), params.VideoURL).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return added == 1, nil
}

func (r repo) RemoveFromQueue(ctx context.Context, params *room.QueueVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	removed, err := r.rc.ZRem(ctx, r.getQueueKey(params.RoomId), params.VideoURL).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if removed == 0 {
		return room.ErrVideoNotFound
	}

	return nil
}

func (r repo) GetQueue(ctx context.Context, roomId string) ([]string, error) {
	queue, err := r.rc.ZRange(ctx, r.getQueueKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return queue, nil
}

// SwapQueueNeighbors swaps a queued video with its neighbor in a single
// scripted step, so two concurrent reorders cannot interleave.
func (r repo) SwapQueueNeighbors(ctx context.Context, params *room.SwapQueueNeighborsParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	res, err := r.rc.EvalSha(ctx, r.swapScript, []string{r.getQueueKey(params.RoomId)}, params.VideoURL, params.Direction).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	switch res {
	case -2:
		return room.ErrVideoNotFound
	case -1:
		return room.ErrInvalidMove
	}

	return nil
}

// AppendToHistory records a played video. Duplicates are suppressed and
// keep their original position.
func (r repo) AppendToHistory(ctx context.Context, params *room.QueueVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	if err := r.appendToList(ctx, r.rc, r.getHistoryKey(params.RoomId), params.VideoURL).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetHistory(ctx context.Context, roomId string) ([]string, error) {
	history, err := r.rc.ZRange(ctx, r.getHistoryKey(roomId), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return history, nil
}
