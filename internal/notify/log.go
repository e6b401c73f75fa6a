package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

// LogNotifier only records what would have been pushed. Used in dev.
type LogNotifier struct{}

var _ core.Notifier = LogNotifier{}

func (LogNotifier) Notify(_ context.Context, token domain.NotificationToken, title, body string) error {
	log.Info().
		Str("module", "notify.log").
		Int("token_len", len(token)).
		Str("title", title).
		Int("body_len", len(body)).
		Msg("notification skipped (log driver)")
	return nil
}
