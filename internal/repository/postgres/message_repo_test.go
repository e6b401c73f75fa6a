package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestMessageRepo_AppendMessage(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMessageRepo(db)
	ctx := context.Background()
	m := domain.NewMessage("A", "B", "hi", time.Now())

	mock.ExpectExec(`INSERT INTO messages \(id, sender_id, receiver_id, body, sent_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(m.ID.String(), "A", "B", "hi", m.SentAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.AppendMessage(ctx, m))

	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(m.ID.String(), "A", "B", "hi", m.SentAt).
		WillReturnError(boom)
	require.ErrorIs(t, r.AppendMessage(ctx, m), boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepo_GetNotificationToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMessageRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT token FROM notification_tokens WHERE user_id=\$1`).
		WithArgs("B").
		WillReturnRows(pgxmock.NewRows([]string{"token"}).AddRow("tok-1"))
	tok, err := r.GetNotificationToken(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, domain.NotificationToken("tok-1"), tok)

	mock.ExpectQuery(`SELECT token FROM notification_tokens WHERE user_id=\$1`).
		WithArgs("C").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetNotificationToken(ctx, "C")
	require.ErrorIs(t, err, core.ErrNotFound)

	mock.ExpectQuery(`SELECT token FROM notification_tokens WHERE user_id=\$1`).
		WithArgs("D").
		WillReturnError(context.DeadlineExceeded)
	_, err = r.GetNotificationToken(ctx, "D")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepo_SetNotificationToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewMessageRepo(db)

	mock.ExpectExec(`INSERT INTO notification_tokens \(user_id, token, updated_at\) VALUES \(\$1, \$2, now\(\)\) ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs("B", "tok-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.SetNotificationToken(context.Background(), "B", "tok-2"))
	require.NoError(t, mock.ExpectationsWereMet())
}
