//go:generate go run go.uber.org/mock/mockgen -source=messagerepo.go -destination=../mocks/mock_message_store.go -package=mocks

// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/dkeye/Tandem/internal/domain"
)

// MessageStore is the durable side of the chat relay.
type MessageStore interface {
	// AppendMessage durably records one message.
	AppendMessage(ctx context.Context, msg domain.Message) error
	// GetNotificationToken returns core.ErrNotFound when the user has no registered device.
	GetNotificationToken(ctx context.Context, userID domain.UserID) (domain.NotificationToken, error)
	// SetNotificationToken registers or replaces the device token of a user.
	SetNotificationToken(ctx context.Context, userID domain.UserID, token domain.NotificationToken) error
}
