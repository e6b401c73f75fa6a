package orch

import (
	"encoding/json"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

// Inbound events. Each one is consumed by exactly one Orchestrator handler.

type Announce struct {
	UserID string `json:"userId" validate:"required,max=64"`
}

type SendMessage struct {
	SenderID   string `json:"senderId" validate:"required,max=64"`
	ReceiverID string `json:"receiverId" validate:"required,max=64"`
	Message    string `json:"message" validate:"required"`
}

type Typing struct {
	SenderID   string `json:"senderId" validate:"required,max=64"`
	ReceiverID string `json:"receiverId" validate:"required,max=64"`
}

type JoinCall struct {
	Room string `json:"room" validate:"required,max=64"`
}

type LeaveCall struct {
	Room string `json:"room" validate:"required,max=64"`
}

type EnvelopeKind string

const (
	KindOffer        EnvelopeKind = "offer"
	KindAnswer       EnvelopeKind = "answer"
	KindICECandidate EnvelopeKind = "iceCandidate"
)

// Envelope is a signaling message. SDP and Candidate are opaque and relayed as is.
type Envelope struct {
	Kind      EnvelopeKind    `json:"-" validate:"oneof=offer answer iceCandidate"`
	Target    string          `json:"target" validate:"required,max=128"`
	Sender    string          `json:"sender" validate:"max=128"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

func (e Envelope) payload() json.RawMessage {
	if e.Kind == KindICECandidate {
		return e.Candidate
	}
	return e.SDP
}

// Outbound events.

type connectedEvent struct {
	Type         string             `json:"type"`
	ConnectionID core.ConnID        `json:"connectionId"`
	ICEServers   []webrtc.ICEServer `json:"iceServers"`
}

type onlineUsersEvent struct {
	Type  string          `json:"type"`
	Users []domain.UserID `json:"users"`
}

type receiveMessageEvent struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	SenderID   domain.UserID `json:"senderId"`
	ReceiverID domain.UserID `json:"receiverId"`
	Message    string        `json:"message"`
	SentAt     time.Time     `json:"sentAt"`
}

type messageAckEvent struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	ReceiverID domain.UserID `json:"receiverId"`
	SentAt     time.Time     `json:"sentAt"`
	Outcome    core.Outcome  `json:"outcome"`
}

type userTypingEvent struct {
	Type     string        `json:"type"`
	SenderID domain.UserID `json:"senderId"`
}

type peerEvent struct {
	Type         string        `json:"type"`
	ConnectionID core.ConnID   `json:"connectionId"`
	Room         domain.RoomID `json:"room,omitempty"`
}

type callJoinedEvent struct {
	Type  string        `json:"type"`
	Room  domain.RoomID `json:"room"`
	Peers []core.ConnID `json:"peers"`
}

type signalEvent struct {
	Type      EnvelopeKind    `json:"type"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Sender    string          `json:"sender"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Error string `json:"error"`
}

const (
	evConnected      = "connected"
	evOnlineUsers    = "updateOnlineUsers"
	evReceiveMessage = "receiveMessage"
	evMessageAck     = "messageAck"
	evUserTyping     = "userTyping"
	evUserJoined     = "userJoined"
	evUserLeft       = "userLeft"
	evCallJoined     = "callJoined"
	evError          = "error"
)
