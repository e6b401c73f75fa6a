// Package badger contains an embedded BadgerDB implementation of repository interfaces.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/repository"
)

// Open opens a database at path, or an in-memory one when path is empty.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

type MessageRepo struct {
	db *badger.DB
}

var _ repository.MessageStore = (*MessageRepo)(nil)

func NewMessageRepo(db *badger.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// messageKey is "msg:{len(receiver)}:{receiver}:{unix_nano_padded}:{uuid}".
// The length segment keeps one inbox from being a prefix of another
// ("bob" vs "bob:x"), and the padded timestamp orders an inbox scan.
func messageKey(m domain.Message) []byte {
	return fmt.Appendf(inboxPrefix(m.ReceiverID), "%019d:%s", m.SentAt.UnixNano(), m.ID)
}

func inboxPrefix(userID domain.UserID) []byte {
	return fmt.Appendf(nil, "msg:%d:%s:", len(userID), userID)
}

func tokenKey(userID domain.UserID) []byte {
	return fmt.Appendf(nil, "token:%s", userID)
}

func (r *MessageRepo) AppendMessage(ctx context.Context, m domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(m), value)
	})
}

func (r *MessageRepo) GetNotificationToken(ctx context.Context, userID domain.UserID) (domain.NotificationToken, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var token []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(userID))
		if err != nil {
			return err
		}
		token, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) || (err == nil && len(token) == 0) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return domain.NotificationToken(token), nil
}

func (r *MessageRepo) SetNotificationToken(ctx context.Context, userID domain.UserID, token domain.NotificationToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey(userID), []byte(token))
	})
}
