package app

import (
	"sync"
	"time"

	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

type registryEntry struct {
	conn         core.Connection
	lastActivity time.Time
}

// IdleEntry is a registry entry reported by Idle.
type IdleEntry struct {
	RoomID       domain.RoomID
	UserID       domain.UserID
	Conn         core.Connection
	LastActivity time.Time
}

// Registry maps (room, user) to the one live connection for that pair.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.RoomID]map[domain.UserID]*registryEntry
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[domain.RoomID]map[domain.UserID]*registryEntry),
		now:     time.Now,
	}
}

// Register stores conn for the pair and returns the connection it replaced, if any.
// Closing the returned connection is the caller's job.
func (r *Registry) Register(roomID domain.RoomID, uid domain.UserID, conn core.Connection) core.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, ok := r.entries[roomID]
	if !ok {
		users = make(map[domain.UserID]*registryEntry)
		r.entries[roomID] = users
	}
	var prev core.Connection
	if e, ok := users[uid]; ok && e.conn.ID() != conn.ID() {
		prev = e.conn
	}
	users[uid] = &registryEntry{conn: conn, lastActivity: r.now()}
	ev := log.Debug().Str("module", "app.registry").Str("room", string(roomID)).Str("user", string(uid)).Str("conn", string(conn.ID()))
	if prev != nil {
		ev = ev.Str("superseded", string(prev.ID()))
	}
	ev.Msg("registered connection")
	return prev
}

// Unregister removes the pair only while conn is still the registered one,
// so a late unregister from a superseded socket cannot drop its replacement.
func (r *Registry) Unregister(roomID domain.RoomID, uid domain.UserID, conn core.Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, ok := r.entries[roomID]
	if !ok {
		return false
	}
	e, ok := users[uid]
	if !ok || e.conn.ID() != conn.ID() {
		return false
	}
	delete(users, uid)
	if len(users) == 0 {
		delete(r.entries, roomID)
	}
	log.Debug().Str("module", "app.registry").Str("room", string(roomID)).Str("user", string(uid)).Str("conn", string(conn.ID())).Msg("unregistered connection")
	return true
}

func (r *Registry) Get(roomID domain.RoomID, uid domain.UserID) (core.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[roomID][uid]; ok {
		return e.conn, true
	}
	return nil, false
}

func (r *Registry) ListRoom(roomID domain.RoomID) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := r.entries[roomID]
	out := make([]domain.UserID, 0, len(users))
	for uid := range users {
		out = append(out, uid)
	}
	return out
}

// Touch records inbound activity for the pair if conn is still current.
func (r *Registry) Touch(roomID domain.RoomID, uid domain.UserID, conn core.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[roomID][uid]; ok && e.conn.ID() == conn.ID() {
		e.lastActivity = r.now()
	}
}

// Idle lists entries whose last activity is before cutoff.
func (r *Registry) Idle(cutoff time.Time) []IdleEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []IdleEntry
	for roomID, users := range r.entries {
		for uid, e := range users {
			if e.lastActivity.Before(cutoff) {
				out = append(out, IdleEntry{RoomID: roomID, UserID: uid, Conn: e.conn, LastActivity: e.lastActivity})
			}
		}
	}
	return out
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, users := range r.entries {
		n += len(users)
	}
	return n
}
