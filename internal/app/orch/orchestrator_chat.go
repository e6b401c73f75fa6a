package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

// Send persists the message, then either delivers it live or falls back to a
// push notification. A persistence failure aborts before any delivery.
func (o *Orchestrator) Send(ctx context.Context, from core.SignalConnection, req SendMessage) (core.Outcome, error) {
	logger := log.With().Str("module", "orch.chat").Str("conn", string(from.ID())).Logger()

	if req.SenderID == "" {
		if uid, ok := o.Registry.UserOf(from.ID()); ok {
			req.SenderID = string(uid)
		}
	}
	if err := check(req); err != nil {
		o.emitError(from, "sendMessage", "bad_payload")
		return core.OutcomeDropped, err
	}
	sender, receiver, err := parseParticipants(req.SenderID, req.ReceiverID)
	if err != nil {
		o.emitError(from, "sendMessage", "bad_payload")
		return core.OutcomeDropped, err
	}
	if limit := o.Options.MaxMessageLen; limit > 0 && len(req.Message) > limit {
		o.emitError(from, "sendMessage", "message_too_long")
		return core.OutcomeDropped, fmt.Errorf("%w: message exceeds %d bytes", core.ErrMalformedPayload, limit)
	}

	msg := domain.NewMessage(sender, receiver, req.Message, o.now())
	if err := o.Store.AppendMessage(ctx, msg); err != nil {
		logger.Error().Err(err).Str("message_id", msg.ID.String()).Msg("persist message")
		o.emitError(from, "sendMessage", "persistence_failure")
		return core.OutcomeDropped, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}

	outcome := o.route(ctx, msg)
	o.emit(from, evMessageAck, messageAckEvent{
		Type:       evMessageAck,
		ID:         msg.ID.String(),
		ReceiverID: msg.ReceiverID,
		SentAt:     msg.SentAt,
		Outcome:    outcome,
	})
	logger.Debug().Str("message_id", msg.ID.String()).Stringer("outcome", outcome).Msg("message relayed")
	return outcome, nil
}

func (o *Orchestrator) route(ctx context.Context, msg domain.Message) core.Outcome {
	if conn, ok := o.Registry.Lookup(msg.ReceiverID); ok {
		delivered := o.emit(conn, evReceiveMessage, receiveMessageEvent{
			Type:       evReceiveMessage,
			ID:         msg.ID.String(),
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Message:    msg.Body,
			SentAt:     msg.SentAt,
		})
		if delivered {
			return core.OutcomeDelivered
		}
		// The receiver went away between lookup and send.
	}
	return o.notify(ctx, msg)
}

func (o *Orchestrator) notify(ctx context.Context, msg domain.Message) core.Outcome {
	logger := log.With().Str("module", "orch.chat").Str("receiver", string(msg.ReceiverID)).Logger()
	if o.Notifier == nil {
		return core.OutcomeDropped
	}
	token, err := o.Store.GetNotificationToken(ctx, msg.ReceiverID)
	if errors.Is(err, core.ErrNotFound) {
		return core.OutcomeDropped
	}
	if err != nil {
		logger.Warn().Err(fmt.Errorf("%w: %w", core.ErrDispatch, err)).Msg("resolve notification token")
		return core.OutcomeDropped
	}

	title, body, timeout := o.Options.NotificationTitle, msg.Body, o.Options.NotifyTimeout
	// Detached from the connection: a disconnect must not cancel the push.
	dctx := context.WithoutCancel(ctx)
	o.dispatches.Go(func() {
		if timeout > 0 {
			var cancel context.CancelFunc
			dctx, cancel = context.WithTimeout(dctx, timeout)
			defer cancel()
		}
		if err := o.Notifier.Notify(dctx, token, title, body); err != nil {
			logger.Warn().Err(fmt.Errorf("%w: %w", core.ErrDispatch, err)).Msg("push notification")
		}
	})
	return core.OutcomeNotified
}

// Typing forwards a typing signal if the receiver is online. Never fails.
func (o *Orchestrator) Typing(from core.SignalConnection, req Typing) core.Outcome {
	if req.SenderID == "" {
		if uid, ok := o.Registry.UserOf(from.ID()); ok {
			req.SenderID = string(uid)
		}
	}
	if err := check(req); err != nil {
		log.Debug().Str("module", "orch.chat").Err(err).Msg("typing dropped")
		return core.OutcomeDropped
	}
	sender, receiver, err := parseParticipants(req.SenderID, req.ReceiverID)
	if err != nil {
		log.Debug().Str("module", "orch.chat").Err(err).Msg("typing dropped")
		return core.OutcomeDropped
	}
	conn, ok := o.Registry.Lookup(receiver)
	if !ok {
		return core.OutcomeDropped
	}
	if !o.emit(conn, evUserTyping, userTypingEvent{Type: evUserTyping, SenderID: sender}) {
		return core.OutcomeDropped
	}
	return core.OutcomeDelivered
}

func parseParticipants(rawSender, rawReceiver string) (domain.UserID, domain.UserID, error) {
	sender, err := domain.ParseUserID(rawSender)
	if err != nil {
		return "", "", fmt.Errorf("%w: sender: %w", core.ErrMalformedPayload, err)
	}
	receiver, err := domain.ParseUserID(rawReceiver)
	if err != nil {
		return "", "", fmt.Errorf("%w: receiver: %w", core.ErrMalformedPayload, err)
	}
	return sender, receiver, nil
}
