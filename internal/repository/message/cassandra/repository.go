// Package cassandra persists chat messages, partitioned by room so a
// whole room's history can be read and deleted with single-partition
// queries.
//
// Expected schema:
//
//	CREATE TABLE messages_by_room (
//	    room_id text,
//	    sent_at timestamp,
//	    message_id text,
//	    sender_name text,
//	    sender_role text,
//	    content text,
//	    reply_to_message_id text,
//	    reply_to_sender_name text,
//	    reply_to_content text,
//	    PRIMARY KEY (room_id, sent_at, message_id)
//	) WITH CLUSTERING ORDER BY (sent_at ASC, message_id ASC);
package cassandra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocql/gocql"

	"github.com/watchroom/server/internal/repository/message"
)

type repo struct {
	session *gocql.Session
	logger  *slog.Logger
}

func NewRepo(session *gocql.Session, logger *slog.Logger) *repo {
	return &repo{
		session: session,
		logger:  logger,
	}
}

// InsertMessages writes a batch of messages in one unlogged batch. All
// messages belong to the same room, so the batch stays single-partition.
func (r *repo) InsertMessages(ctx context.Context, messages []message.Message) error {
	r.logger.DebugContext(ctx, "called", "count", len(messages))
	if len(messages) == 0 {
		return nil
	}

	batch := r.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	for _, msg := range messages {
		var replyToMessageId, replyToSenderName, replyToContent string
		if msg.ReplyTo != nil {
			replyToMessageId = msg.ReplyTo.MessageId
			replyToSenderName = msg.ReplyTo.SenderName
			replyToContent = msg.ReplyTo.Content
		}

		batch.Query(`INSERT INTO messages_by_room
			(room_id, sent_at, message_id, sender_name, sender_role, content,
			 reply_to_message_id, reply_to_sender_name, reply_to_content)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.RoomId, msg.SentAt, msg.Id, msg.SenderName, msg.SenderRole, msg.Content,
			replyToMessageId, replyToSenderName, replyToContent,
		)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	return nil
}

func (r *repo) GetMessagesByRoom(ctx context.Context, roomId string) ([]message.Message, error) {
	iter := r.session.Query(`SELECT sent_at, message_id, sender_name, sender_role, content,
			reply_to_message_id, reply_to_sender_name, reply_to_content
		FROM messages_by_room WHERE room_id = ?`, roomId).
		WithContext(ctx).Iter()

	var messages []message.Message
	var (
		sentAt                                            time.Time
		messageId, senderName, senderRole, content        string
		replyToMessageId, replyToSenderName, replyToContent string
	)
	for iter.Scan(&sentAt, &messageId, &senderName, &senderRole, &content,
		&replyToMessageId, &replyToSenderName, &replyToContent) {
		msg := message.Message{
			Id:         messageId,
			RoomId:     roomId,
			SenderName: senderName,
			SenderRole: senderRole,
			Content:    content,
			SentAt:     sentAt,
		}
		if replyToMessageId != "" {
			msg.ReplyTo = &message.ReplyTo{
				MessageId:  replyToMessageId,
				SenderName: replyToSenderName,
				Content:    replyToContent,
			}
		}
		messages = append(messages, msg)
	}

	if err := iter.Close(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

func (r *repo) DeleteMessagesByRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	if err := r.session.Query(`DELETE FROM messages_by_room WHERE room_id = ?`, roomId).
		WithContext(ctx).Exec(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}
