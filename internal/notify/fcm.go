// Package notify holds Notifier implementations.
package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM sends notifications through Firebase Cloud Messaging.
type FCM struct {
	client messagingClient
}

var _ core.Notifier = (*FCM)(nil)

// NewFCM builds a client from a service account file. An empty path falls back
// to application default credentials.
func NewFCM(ctx context.Context, credentialsFile string) (*FCM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return &FCM{client: client}, nil
}

func (f *FCM) Notify(ctx context.Context, token domain.NotificationToken, title, body string) error {
	id, err := f.client.Send(ctx, &messaging.Message{
		Token: string(token),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	log.Debug().Str("module", "notify.fcm").Str("message_id", id).Msg("notification sent")
	return nil
}
