package message

import "time"

// Message is a chat message. Buffered and durable copies share this shape.
type Message struct {
	Id         string    `json:"id"`
	RoomId     string    `json:"roomId"`
	SenderName string    `json:"senderName"`
	SenderRole string    `json:"senderRole"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sentAt"`
	ReplyTo    *ReplyTo  `json:"replyTo,omitempty"`
}

type ReplyTo struct {
	MessageId  string `json:"messageId"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
}
