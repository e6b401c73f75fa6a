package orch

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/repository"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Options struct {
	NotificationTitle string
	NotifyTimeout     time.Duration
	// NotifyPeerLeft sends userLeft to the remaining call members on leave/disconnect.
	NotifyPeerLeft bool
	MaxMessageLen  int
	ICEServers     []webrtc.ICEServer
}

func DefaultOptions() Options {
	return Options{
		NotificationTitle: "New Message",
		NotifyTimeout:     10 * time.Second,
		NotifyPeerLeft:    true,
		MaxMessageLen:     4096,
	}
}

// Orchestrator routes typed inbound events to the presence registry, the
// message relay and the signaling coordinator.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.CallRooms
	Policy   app.Policy
	Store    repository.MessageStore
	Notifier core.Notifier
	Options  Options

	dispatches conc.WaitGroup
	now        func() time.Time
}

func New(store repository.MessageStore, notifier core.Notifier, opts Options) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewCallRooms(),
		Policy:   app.SimplePolicy{},
		Store:    store,
		Notifier: notifier,
		Options:  opts,
		now:      time.Now,
	}
}

// Connect attaches a fresh connection and greets it with its id, the ICE
// servers to use and the current online set.
func (o *Orchestrator) Connect(conn core.SignalConnection) {
	o.Registry.Attach(conn)
	ice := o.Options.ICEServers
	if ice == nil {
		ice = []webrtc.ICEServer{}
	}
	o.emit(conn, evConnected, connectedEvent{
		Type:         evConnected,
		ConnectionID: conn.ID(),
		ICEServers:   ice,
	})
	o.emit(conn, evOnlineUsers, onlineUsersEvent{Type: evOnlineUsers, Users: o.Registry.ListOnline()})
	log.Info().Str("module", "orch").Str("conn", string(conn.ID())).Msg("connected")
}

// Announce binds the connection to a durable user id and broadcasts presence.
func (o *Orchestrator) Announce(from core.SignalConnection, req Announce) error {
	if err := check(req); err != nil {
		o.emitError(from, "userConnected", "bad_payload")
		return err
	}
	uid, err := domain.ParseUserID(req.UserID)
	if err != nil {
		o.emitError(from, "userConnected", "bad_payload")
		return fmt.Errorf("%w: %w", core.ErrMalformedPayload, err)
	}
	o.Registry.Register(uid, from)
	o.broadcastOnline()
	return nil
}

// Disconnect removes every trace of the connection. Idempotent.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	uid, removed := o.Registry.Detach(id)
	for room, rest := range o.Rooms.LeaveAll(id) {
		o.notifyPeerLeft(room, id, rest)
	}
	if removed {
		o.broadcastOnline()
	}
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("user", string(uid)).Msg("disconnected")
}

func (o *Orchestrator) OnlineUsers() []domain.UserID {
	return o.Registry.ListOnline()
}

func (o *Orchestrator) RoomsInfo() []core.RoomInfo {
	return o.Rooms.List()
}

// Drain waits for in-flight notification dispatches.
func (o *Orchestrator) Drain() {
	if r := o.dispatches.WaitAndRecover(); r != nil {
		log.Error().Str("module", "orch").Err(r.AsError()).Msg("notification dispatch panicked")
	}
}

func (o *Orchestrator) broadcastOnline() {
	ev := onlineUsersEvent{Type: evOnlineUsers, Users: o.Registry.ListOnline()}
	data, ok := encode(ev)
	if !ok {
		return
	}
	for _, conn := range o.Registry.Connections() {
		o.send(conn, evOnlineUsers, data)
	}
}

// Reply queues a transport-level frame (pong, error) on conn under the same
// backpressure policy as every other outbound event.
func (o *Orchestrator) Reply(conn core.SignalConnection, event string, v any) bool {
	return o.emit(conn, event, v)
}

// emit encodes v and queues it on conn. Reports whether the frame was queued.
func (o *Orchestrator) emit(conn core.SignalConnection, event string, v any) bool {
	data, ok := encode(v)
	if !ok {
		return false
	}
	return o.send(conn, event, data)
}

func (o *Orchestrator) send(conn core.SignalConnection, event string, data core.Frame) bool {
	err := conn.TrySend(data)
	if err == nil {
		return true
	}
	logger := log.With().Str("module", "orch").Str("conn", string(conn.ID())).Str("event", event).Logger()
	if errors.Is(err, core.ErrBackpressure) && o.Policy != nil {
		switch o.Policy.OnBackPressure(conn, event) {
		case app.KickMember:
			logger.Warn().Msg("send buffer full, kicking connection")
			conn.Close()
			return false
		case app.DropFrame, app.NoAction:
		}
	}
	logger.Debug().Err(err).Msg("frame dropped")
	return false
}

func (o *Orchestrator) emitError(conn core.SignalConnection, event, reason string) {
	o.emit(conn, evError, errorEvent{Type: evError, Event: event, Error: reason})
}

func encode(v any) (core.Frame, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "orch").Err(fmt.Errorf("%w: %w", core.ErrMalformedPayload, err)).Msg("encode event")
		return nil, false
	}
	return data, true
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrMalformedPayload, err)
	}
	return nil
}
