package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/core"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Settings.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Settings.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(c.id)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(c.id)
		}
		c.Close()
	}()

	pongWait := ctl.Settings.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.Settings.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(ctx, c, data)
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, c core.SignalConnection, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "", "bad_json")
		return
	}

	if env.Type != "ping" && ctl.Limiter != nil && !ctl.Limiter.Allow(c.ID()) {
		log.Warn().Str("module", "signal").Str("conn", string(c.ID())).Str("type", env.Type).Msg("rate limited")
		ctl.sendError(c, env.Type, "rate_limited")
		return
	}

	switch env.Type {
	case "userConnected":
		ctl.handleUserConnected(c, data)
	case "sendMessage":
		ctl.handleSendMessage(ctx, c, data)
	case "typing":
		ctl.handleTyping(c, data)
	case "joinCall":
		ctl.handleJoinCall(c, data)
	case "leaveCall":
		ctl.handleLeaveCall(c, data)
	case "offer", "answer", "iceCandidate":
		ctl.handleEnvelope(c, env.Type, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, env.Type, "unknown_event")
	}
}

// decode unmarshals an inbound event body.
func decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %w", core.ErrMalformedPayload, err)
	}
	return v, nil
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, event string, v any) {
	if !ctl.Orch.Reply(c, event, v) {
		log.Debug().Str("module", "signal").Str("conn", string(c.ID())).Str("event", event).Msg("reply not queued")
	}
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, event, reason string) {
	ctl.sendJSON(c, "error", map[string]any{
		"type":  "error",
		"event": event,
		"error": reason,
	})
}
