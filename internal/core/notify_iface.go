//go:generate go run go.uber.org/mock/mockgen -source=notify_iface.go -destination=../mocks/mock_notifier.go -package=mocks
package core

import (
	"context"

	"github.com/dkeye/Tandem/internal/domain"
)

// Notifier delivers a push notification to a device token.
// Callers treat it as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, token domain.NotificationToken, title, body string) error
}
