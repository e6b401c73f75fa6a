package app

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
)

// Registry is the presence registry: live connections plus the
// user -> connection mapping. At most one connection per user, last writer wins.
type Registry struct {
	mu     sync.RWMutex
	conns  map[core.ConnID]core.SignalConnection
	users  map[domain.UserID]core.SignalConnection
	owners map[core.ConnID]domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[core.ConnID]core.SignalConnection),
		users:  make(map[domain.UserID]core.SignalConnection),
		owners: make(map[core.ConnID]domain.UserID),
	}
}

func (r *Registry) Attach(conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
	log.Debug().Str("module", "app.registry").Str("conn", string(conn.ID())).Msg("attached connection")
}

// Register binds uid to conn, replacing any previous connection of uid.
// The replaced connection is not told; it only learns about its own disconnect.
func (r *Registry) Register(uid domain.UserID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := conn.ID()
	if prev, ok := r.owners[id]; ok && prev != uid {
		if cur, ok := r.users[prev]; ok && cur.ID() == id {
			delete(r.users, prev)
		}
	}
	if old, ok := r.users[uid]; ok && old.ID() != id {
		delete(r.owners, old.ID())
		log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("stale_conn", string(old.ID())).Msg("replaced presence")
	}
	r.users[uid] = conn
	r.owners[id] = uid
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(id)).Msg("registered presence")
}

func (r *Registry) Lookup(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.users[uid]
	return conn, ok
}

func (r *Registry) Conn(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

func (r *Registry) UserOf(id core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.owners[id]
	return uid, ok
}

// Unregister removes the presence entry pointing at id. Reports whether one existed.
func (r *Registry) Unregister(id core.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(id)
}

func (r *Registry) unregisterLocked(id core.ConnID) bool {
	uid, ok := r.owners[id]
	if !ok {
		return false
	}
	delete(r.owners, id)
	if cur, ok := r.users[uid]; ok && cur.ID() == id {
		delete(r.users, uid)
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(id)).Msg("unregistered presence")
	return true
}

// Detach forgets the connection entirely. Safe to call more than once.
func (r *Registry) Detach(id core.ConnID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid := r.owners[id]
	removed := r.unregisterLocked(id)
	delete(r.conns, id)
	return uid, removed
}

// ListOnline returns the announced users, sorted.
func (r *Registry) ListOnline() []domain.UserID {
	r.mu.RLock()
	out := lo.Keys(r.users)
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

func (r *Registry) Connections() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.conns)
}
