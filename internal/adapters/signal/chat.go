package signal

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/core"
)

func (ctl *SignalWSController) handleUserConnected(
	conn core.SignalConnection,
	data []byte,
) {
	p, err := decode[orch.Announce](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad userConnected payload")
		ctl.sendError(conn, "userConnected", "bad_payload")
		return
	}
	if err := ctl.Orch.Announce(conn, p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(conn.ID())).Msg("announce rejected")
	}
}

func (ctl *SignalWSController) handleSendMessage(
	ctx context.Context,
	conn core.SignalConnection,
	data []byte,
) {
	p, err := decode[orch.SendMessage](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad sendMessage payload")
		ctl.sendError(conn, "sendMessage", "bad_payload")
		return
	}
	outcome, err := ctl.Orch.Send(ctx, conn, p)
	switch {
	case errors.Is(err, core.ErrPersistence):
		log.Error().Err(err).Str("module", "signal").Str("conn", string(conn.ID())).Msg("message not persisted")
	case err != nil:
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(conn.ID())).Msg("message rejected")
	default:
		log.Debug().Str("module", "signal").Str("conn", string(conn.ID())).Stringer("outcome", outcome).Msg("sendMessage")
	}
}

func (ctl *SignalWSController) handleTyping(
	conn core.SignalConnection,
	data []byte,
) {
	p, err := decode[orch.Typing](data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	ctl.Orch.Typing(conn, p)
}
