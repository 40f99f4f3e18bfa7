package room

import (
	"context"
	"time"
)

// ReapExpiredRooms deletes every room whose expiration lies at or before
// now, messages first. A room that fails to clean up is skipped and
// retried on the next sweep. Returns the number of rooms reaped.
func (s service) ReapExpiredRooms(ctx context.Context, now time.Time) (int, error) {
	roomIds, err := s.roomRepo.GetExpiredRoomIds(ctx, now)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, roomId := range roomIds {
		if err := s.messageRepo.DeleteMessagesByRoom(ctx, roomId); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete messages of expired room", "roomId", roomId, "error", err)
			continue
		}
		if err := s.roomRepo.DeleteRoom(ctx, roomId); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete expired room", "roomId", roomId, "error", err)
			continue
		}
		s.buffer.Discard(roomId)
		reaped++
	}

	return reaped, nil
}

// StartReaper sweeps for expired rooms on a fixed interval until the
// context is canceled.
func (s service) StartReaper(ctx context.Context) error {
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reaped, err := s.ReapExpiredRooms(ctx, time.Now())
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to reap expired rooms", "error", err)
				continue
			}
			if reaped > 0 {
				s.logger.InfoContext(ctx, "reaped expired rooms", "count", reaped)
			}
		}
	}
}
