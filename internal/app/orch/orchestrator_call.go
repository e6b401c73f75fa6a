package orch

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

// JoinCall adds the connection to a room and tells the members already there.
func (o *Orchestrator) JoinCall(from core.SignalConnection, req JoinCall) error {
	if err := check(req); err != nil {
		o.emitError(from, "joinCall", "bad_payload")
		return err
	}
	room, err := domain.ParseRoomID(req.Room)
	if err != nil {
		o.emitError(from, "joinCall", "bad_payload")
		return fmt.Errorf("%w: %w", core.ErrMalformedPayload, err)
	}

	peers := o.Rooms.Join(room, from)
	ids := make([]core.ConnID, 0, len(peers))
	joined := peerEvent{Type: evUserJoined, ConnectionID: from.ID()}
	for _, p := range peers {
		ids = append(ids, p.ID())
		o.emit(p, evUserJoined, joined)
	}
	o.emit(from, evCallJoined, callJoinedEvent{Type: evCallJoined, Room: room, Peers: ids})
	log.Info().Str("module", "orch.call").Str("conn", string(from.ID())).Str("room", string(room)).Int("peers", len(peers)).Msg("joined call")
	return nil
}

// LeaveCall removes the connection from one room without disconnecting it.
func (o *Orchestrator) LeaveCall(from core.SignalConnection, req LeaveCall) bool {
	if err := check(req); err != nil {
		o.emitError(from, "leaveCall", "bad_payload")
		return false
	}
	room, err := domain.ParseRoomID(req.Room)
	if err != nil {
		o.emitError(from, "leaveCall", "bad_payload")
		return false
	}
	rest, ok := o.Rooms.Leave(room, from.ID())
	if !ok {
		return false
	}
	o.notifyPeerLeft(room, from.ID(), rest)
	return true
}

// Relay forwards an offer, answer or ICE candidate verbatim.
// Target resolution order: live connection id, a room the sender belongs to,
// then an announced user id. Unresolved targets are dropped silently.
func (o *Orchestrator) Relay(from core.SignalConnection, env Envelope) core.Outcome {
	logger := log.With().Str("module", "orch.call").Str("conn", string(from.ID())).Str("kind", string(env.Kind)).Logger()
	if env.Sender == "" {
		env.Sender = string(from.ID())
	}
	if err := check(env); err != nil || len(env.payload()) == 0 {
		logger.Warn().Err(err).Msg("malformed signaling payload dropped")
		return core.OutcomeDropped
	}

	targets := o.resolve(from, env.Target)
	if len(targets) == 0 {
		logger.Debug().Str("target", env.Target).Msg("signaling target not found")
		return core.OutcomeDropped
	}

	ev := signalEvent{Type: env.Kind, Sender: env.Sender}
	if env.Kind == KindICECandidate {
		ev.Candidate = env.Candidate
	} else {
		ev.SDP = env.SDP
	}
	data, ok := encode(ev)
	if !ok {
		return core.OutcomeDropped
	}

	sent := 0
	for _, conn := range targets {
		if o.send(conn, string(env.Kind), data) {
			sent++
		}
	}
	if sent == 0 {
		return core.OutcomeDropped
	}
	return core.OutcomeDelivered
}

func (o *Orchestrator) resolve(from core.SignalConnection, target string) []core.SignalConnection {
	self := from.ID()
	target = strings.TrimSpace(target)
	if conn, ok := o.Registry.Conn(core.ConnID(target)); ok {
		if conn.ID() == self {
			return nil
		}
		return []core.SignalConnection{conn}
	}
	if room, err := domain.ParseRoomID(target); err == nil && o.Rooms.IsMember(room, self) {
		return o.Rooms.Others(room, self)
	}
	if uid, err := domain.ParseUserID(target); err == nil {
		if conn, ok := o.Registry.Lookup(uid); ok && conn.ID() != self {
			return []core.SignalConnection{conn}
		}
	}
	return nil
}

func (o *Orchestrator) notifyPeerLeft(room domain.RoomID, id core.ConnID, rest []core.SignalConnection) {
	if !o.Options.NotifyPeerLeft || len(rest) == 0 {
		return
	}
	ev := peerEvent{Type: evUserLeft, ConnectionID: id, Room: room}
	for _, p := range rest {
		o.emit(p, evUserLeft, ev)
	}
}
