package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/message"
)

const maxMessageLength = 5000

type SendMessageParams struct {
	RoomId   string
	SenderId string
	Content  string
	ReplyTo  *message.ReplyTo
}

type SendMessageResponse struct {
	Message message.Message
	Conns   []*websocket.Conn
}

// SendMessage buffers a chat message and fans it out. When the buffer
// reaches capacity it is flushed inline; a failed flush is logged but does
// not fail the send since the message is already buffered.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	entry, err := s.getEntry(params.RoomId, params.SenderId)
	if err != nil {
		return SendMessageResponse{}, err
	}

	content := strings.TrimSpace(params.Content)
	if content == "" || len(content) > maxMessageLength {
		return SendMessageResponse{}, ErrInvalidMessage
	}

	msg := message.Message{
		Id:         uuid.NewString(),
		RoomId:     params.RoomId,
		SenderName: entry.Username,
		SenderRole: string(entry.Role),
		Content:    content,
		SentAt:     time.Now(),
		ReplyTo:    params.ReplyTo,
	}

	if s.buffer.Enqueue(params.RoomId, msg) >= s.bufferCapacity {
		if err := s.FlushRoom(ctx, params.RoomId); err != nil {
			s.logger.ErrorContext(ctx, "failed to flush full message buffer", "roomId", params.RoomId, "error", err)
		}
	}

	return SendMessageResponse{
		Message: msg,
		Conns:   s.getConns(ctx, params.RoomId),
	}, nil
}

// FlushRoom writes the room's buffered messages in one batch. Buffers of
// rooms that no longer exist are discarded, their messages are not worth a
// durable write. On a failed write the drained messages go back into the
// buffer for the next attempt.
func (s service) FlushRoom(ctx context.Context, roomId string) error {
	msgs := s.buffer.Drain(roomId)
	if len(msgs) == 0 {
		return nil
	}

	exists, err := s.roomRepo.RoomExists(ctx, roomId)
	if err != nil {
		s.buffer.Restore(roomId, msgs)
		return fmt.Errorf("failed to check room: %w", err)
	}
	if !exists {
		s.logger.InfoContext(ctx, "discarding buffered messages of deleted room", "roomId", roomId, "count", len(msgs))
		return nil
	}

	if err := s.messageRepo.InsertMessages(ctx, msgs); err != nil {
		s.buffer.Restore(roomId, msgs)
		return fmt.Errorf("failed to insert messages: %w", err)
	}

	return nil
}

// StartFlusher periodically flushes every non-empty buffer until the
// context is canceled.
func (s service) StartFlusher(ctx context.Context) error {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, roomId := range s.buffer.RoomIds() {
				if err := s.FlushRoom(ctx, roomId); err != nil {
					s.logger.ErrorContext(ctx, "failed to flush message buffer", "roomId", roomId, "error", err)
				}
			}
		}
	}
}

// GetMessages returns the room's chat history, durable messages first and
// the unflushed tail after them.
func (s service) GetMessages(ctx context.Context, roomId string) ([]message.Message, error) {
	exists, err := s.roomRepo.RoomExists(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to check room: %w", err)
	}
	if !exists {
		return nil, ErrRoomNotFound
	}

	msgs, err := s.messageRepo.GetMessagesByRoom(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return append(msgs, s.buffer.Pending(roomId)...), nil
}
