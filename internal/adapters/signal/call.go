package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/core"
)

func (ctl *SignalWSController) handleJoinCall(
	conn core.SignalConnection,
	data []byte,
) {
	p, err := decode[orch.JoinCall](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinCall payload")
		ctl.sendError(conn, "joinCall", "bad_payload")
		return
	}
	if err := ctl.Orch.JoinCall(conn, p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(conn.ID())).Msg("join rejected")
	}
}

func (ctl *SignalWSController) handleLeaveCall(
	conn core.SignalConnection,
	data []byte,
) {
	p, err := decode[orch.LeaveCall](data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leaveCall payload")
		ctl.sendError(conn, "leaveCall", "bad_payload")
		return
	}
	ctl.Orch.LeaveCall(conn, p)
}

// handleEnvelope relays offer/answer/iceCandidate. Malformed envelopes and
// unknown targets are logged and dropped without telling the sender.
func (ctl *SignalWSController) handleEnvelope(
	conn core.SignalConnection,
	kind string,
	data []byte,
) {
	p, err := decode[orch.Envelope](data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad signaling payload")
		return
	}
	p.Kind = orch.EnvelopeKind(kind)
	outcome := ctl.Orch.Relay(conn, p)
	log.Debug().Str("module", "signal").Str("conn", string(conn.ID())).Str("kind", kind).Stringer("outcome", outcome).Msg("relay")
}
