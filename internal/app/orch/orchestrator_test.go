package orch

import (
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dkeye/Tandem/internal/core/coretest"
	"github.com/dkeye/Tandem/internal/mocks"
)

var fixedNow = time.Date(2026, 2, 14, 19, 30, 0, 0, time.UTC)

type fixture struct {
	orch     *Orchestrator
	store    *mocks.MockMessageStore
	notifier *mocks.MockNotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMessageStore(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	o := New(store, notifier, DefaultOptions())
	o.now = func() time.Time { return fixedNow }
	t.Cleanup(o.Drain)
	return fixture{orch: o, store: store, notifier: notifier}
}

// connect attaches a connection and forgets the greeting frames.
func (f fixture) connect(id string) *coretest.Conn {
	c := coretest.NewConn(id)
	f.orch.Connect(c)
	c.Reset()
	return c
}

func (f fixture) online(id, user string) *coretest.Conn {
	c := f.connect(id)
	if err := f.orch.Announce(c, Announce{UserID: user}); err != nil {
		panic(err)
	}
	return c
}

func TestConnect_Greets(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.orch.Options.ICEServers = []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}}
	f.online("c0", "zoe")

	c := coretest.NewConn("c1")
	f.orch.Connect(c)

	events := c.Events()
	req.Len(events, 2)
	req.Equal("connected", events[0].Type())
	req.Equal("c1", events[0]["connectionId"])
	req.Len(events[0]["iceServers"], 1)
	req.Equal("updateOnlineUsers", events[1].Type())
	req.Equal([]any{"zoe"}, events[1]["users"])
}

func TestAnnounce_BroadcastsOnlineSet(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	anon := f.connect("anon")
	c1 := f.connect("c1")

	req.NoError(f.orch.Announce(c1, Announce{UserID: "alice"}))

	for _, c := range []*coretest.Conn{anon, c1} {
		got := c.EventsOf("updateOnlineUsers")
		req.Len(got, 1)
		req.Equal([]any{"alice"}, got[0]["users"])
	}
}

func TestAnnounce_LastWriterWins(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	c1 := f.online("c1", "u")
	c2 := f.online("c2", "u")

	got, ok := f.orch.Registry.Lookup("u")
	req.True(ok)
	req.Equal(c2, got)

	// The stale connection disconnecting leaves the fresh one in place.
	f.orch.Disconnect(c1.ID())
	got, ok = f.orch.Registry.Lookup("u")
	req.True(ok)
	req.Equal(c2, got)
}

func TestAnnounce_Malformed(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	c := f.connect("c")

	req.Error(f.orch.Announce(c, Announce{UserID: ""}))
	req.Error(f.orch.Announce(c, Announce{UserID: "   "}))
	req.Empty(f.orch.OnlineUsers())
	req.Len(c.EventsOf("error"), 2)
}

func TestDisconnect_CleansPresenceAndRooms(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	a := f.online("c1", "A")
	b := f.online("c2", "B")
	req.NoError(f.orch.JoinCall(a, JoinCall{Room: "r1"}))
	req.NoError(f.orch.JoinCall(b, JoinCall{Room: "r1"}))
	b.Reset()

	f.orch.Disconnect(a.ID())

	_, ok := f.orch.Registry.Lookup("A")
	req.False(ok)
	req.False(f.orch.Rooms.IsMember("r1", a.ID()))
	req.Equal(1, f.orch.Rooms.MemberCount("r1"))

	online := b.EventsOf("updateOnlineUsers")
	req.Len(online, 1)
	req.Equal([]any{"B"}, online[0]["users"])

	left := b.EventsOf("userLeft")
	req.Len(left, 1)
	req.Equal("c1", left[0]["connectionId"])
	req.Equal("r1", left[0]["room"])

	// idempotent
	b.Reset()
	f.orch.Disconnect(a.ID())
	req.Empty(b.Events())
}

func TestDisconnect_PeerLeftDisabled(t *testing.T) {
	f := newFixture(t)
	f.orch.Options.NotifyPeerLeft = false
	a := f.connect("c1")
	b := f.connect("c2")
	require.NoError(t, f.orch.JoinCall(a, JoinCall{Room: "r1"}))
	require.NoError(t, f.orch.JoinCall(b, JoinCall{Room: "r1"}))
	b.Reset()

	f.orch.Disconnect(a.ID())

	require.Empty(t, b.Events())
}

func TestSend_KicksSlowConnection(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	slow := f.connect("slow")
	slow.SetFull(true)

	req.False(f.orch.emit(slow, evReceiveMessage, map[string]string{"type": evReceiveMessage}))
	req.True(slow.Closed())
}

func TestSend_DropsEphemeralOnBackpressure(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	slow := f.connect("slow")
	slow.SetFull(true)

	req.False(f.orch.emit(slow, evUserTyping, map[string]string{"type": evUserTyping}))
	req.False(slow.Closed())
}
