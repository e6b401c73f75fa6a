package app

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

type memberSet map[core.ConnID]core.SignalConnection

// CallRooms keeps call membership sets. A room exists while it has members
// and is deleted as soon as the last one leaves.
type CallRooms struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]memberSet
	memberOf map[core.ConnID]map[domain.RoomID]struct{}
}

func NewCallRooms() *CallRooms {
	return &CallRooms{
		rooms:    make(map[domain.RoomID]memberSet),
		memberOf: make(map[core.ConnID]map[domain.RoomID]struct{}),
	}
}

// Join adds conn to the room and returns the other members at that moment.
func (cr *CallRooms) Join(id domain.RoomID, conn core.SignalConnection) []core.SignalConnection {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	room, ok := cr.rooms[id]
	if !ok {
		room = make(memberSet)
		cr.rooms[id] = room
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	}
	room[conn.ID()] = conn
	joined, ok := cr.memberOf[conn.ID()]
	if !ok {
		joined = make(map[domain.RoomID]struct{})
		cr.memberOf[conn.ID()] = joined
	}
	joined[id] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(conn.ID())).Int("members", len(room)).Msg("member added")
	return othersLocked(room, conn.ID())
}

// Leave removes connID from one room and returns the remaining members.
func (cr *CallRooms) Leave(id domain.RoomID, connID core.ConnID) ([]core.SignalConnection, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.leaveLocked(id, connID)
}

func (cr *CallRooms) leaveLocked(id domain.RoomID, connID core.ConnID) ([]core.SignalConnection, bool) {
	room, ok := cr.rooms[id]
	if !ok {
		return nil, false
	}
	if _, ok := room[connID]; !ok {
		return nil, false
	}
	delete(room, connID)
	if joined, ok := cr.memberOf[connID]; ok {
		delete(joined, id)
		if len(joined) == 0 {
			delete(cr.memberOf, connID)
		}
	}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(connID)).Msg("member removed")
	if len(room) == 0 {
		delete(cr.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room deleted")
		return nil, true
	}
	return lo.Values(room), true
}

// LeaveAll removes connID from every room it joined and returns the remaining
// members per room.
func (cr *CallRooms) LeaveAll(connID core.ConnID) map[domain.RoomID][]core.SignalConnection {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	joined := lo.Keys(cr.memberOf[connID])
	out := make(map[domain.RoomID][]core.SignalConnection, len(joined))
	for _, id := range joined {
		if rest, ok := cr.leaveLocked(id, connID); ok {
			out[id] = rest
		}
	}
	return out
}

func (cr *CallRooms) Has(id domain.RoomID) bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	_, ok := cr.rooms[id]
	return ok
}

func (cr *CallRooms) IsMember(id domain.RoomID, connID core.ConnID) bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	_, ok := cr.rooms[id][connID]
	return ok
}

// Others returns the members of a room except one connection.
func (cr *CallRooms) Others(id domain.RoomID, except core.ConnID) []core.SignalConnection {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return othersLocked(cr.rooms[id], except)
}

func (cr *CallRooms) MemberCount(id domain.RoomID) int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.rooms[id])
}

func (cr *CallRooms) RoomsOf(connID core.ConnID) []domain.RoomID {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return lo.Keys(cr.memberOf[connID])
}

func (cr *CallRooms) List() []core.RoomInfo {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(cr.rooms))
	for id, room := range cr.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: len(room)})
	}
	return out
}

func othersLocked(room memberSet, except core.ConnID) []core.SignalConnection {
	out := make([]core.SignalConnection, 0, len(room))
	for id, conn := range room {
		if id == except {
			continue
		}
		out = append(out, conn)
	}
	return out
}
