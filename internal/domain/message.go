package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once created.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   UserID    `json:"senderId"`
	ReceiverID UserID    `json:"receiverId"`
	Body       string    `json:"message"`
	SentAt     time.Time `json:"sentAt"`
}

// NewMessage stamps a fresh id and normalizes the timestamp to UTC.
func NewMessage(sender, receiver UserID, body string, at time.Time) Message {
	return Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Body:       body,
		SentAt:     at.UTC(),
	}
}
