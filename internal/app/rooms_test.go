package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/core/coretest"
	"github.com/dkeye/Tandem/internal/domain"
)

func TestCallRooms_Join_ReturnsPeers(t *testing.T) {
	req := require.New(t)
	rooms := NewCallRooms()
	c1 := coretest.NewConn("c1")
	c2 := coretest.NewConn("c2")

	req.Empty(rooms.Join("r1", c1))
	peers := rooms.Join("r1", c2)

	req.Equal([]core.SignalConnection{c1}, peers)
	req.Equal(2, rooms.MemberCount("r1"))
	req.True(rooms.IsMember("r1", c1.ID()))
	req.Equal([]core.SignalConnection{c2}, rooms.Others("r1", c1.ID()))
}

func TestCallRooms_Leave_DeletesEmptyRoom(t *testing.T) {
	req := require.New(t)
	rooms := NewCallRooms()
	c1 := coretest.NewConn("c1")
	c2 := coretest.NewConn("c2")
	rooms.Join("r1", c1)
	rooms.Join("r1", c2)

	rest, ok := rooms.Leave("r1", c1.ID())
	req.True(ok)
	req.Equal([]core.SignalConnection{c2}, rest)
	req.True(rooms.Has("r1"))

	_, ok = rooms.Leave("r1", c1.ID())
	req.False(ok)

	rest, ok = rooms.Leave("r1", c2.ID())
	req.True(ok)
	req.Empty(rest)
	req.False(rooms.Has("r1"))
	req.Empty(rooms.List())
}

func TestCallRooms_LeaveAll(t *testing.T) {
	req := require.New(t)
	rooms := NewCallRooms()
	c1 := coretest.NewConn("c1")
	c2 := coretest.NewConn("c2")
	rooms.Join("r1", c1)
	rooms.Join("r2", c1)
	rooms.Join("r2", c2)
	req.ElementsMatch([]domain.RoomID{"r1", "r2"}, rooms.RoomsOf(c1.ID()))

	left := rooms.LeaveAll(c1.ID())

	req.Len(left, 2)
	req.Empty(left["r1"])
	req.Equal([]core.SignalConnection{c2}, left["r2"])
	req.False(rooms.Has("r1"))
	req.Equal([]core.RoomInfo{{ID: "r2", MemberCount: 1}}, rooms.List())
	req.Empty(rooms.RoomsOf(c1.ID()))

	// idempotent
	req.Empty(rooms.LeaveAll(c1.ID()))
}
