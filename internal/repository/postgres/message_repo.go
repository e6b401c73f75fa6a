package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/repository"
)

// MessageRepo implements repository.MessageStore using PostgreSQL.
type MessageRepo struct{ db *DB }

var _ repository.MessageStore = (*MessageRepo)(nil)

func NewMessageRepo(db *DB) *MessageRepo { return &MessageRepo{db: db} }

// AppendMessage inserts one row into the append-only message log.
func (r *MessageRepo) AppendMessage(ctx context.Context, m domain.Message) error {
	const q = `
INSERT INTO messages (id, sender_id, receiver_id, body, sent_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, m.ID.String(), string(m.SenderID), string(m.ReceiverID), m.Body, m.SentAt)
	return err
}

func (r *MessageRepo) GetNotificationToken(ctx context.Context, userID domain.UserID) (domain.NotificationToken, error) {
	const q = `SELECT token FROM notification_tokens WHERE user_id=$1`
	var token string
	if err := r.db.Pool.QueryRow(ctx, q, string(userID)).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", core.ErrNotFound
		}
		return "", err
	}
	if token == "" {
		return "", core.ErrNotFound
	}
	return domain.NotificationToken(token), nil
}

func (r *MessageRepo) SetNotificationToken(ctx context.Context, userID domain.UserID, token domain.NotificationToken) error {
	const q = `
INSERT INTO notification_tokens (user_id, token, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`
	_, err := r.db.Pool.Exec(ctx, q, string(userID), string(token))
	return err
}
