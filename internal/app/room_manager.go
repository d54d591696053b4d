package app

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrRoomFull = errors.New("room is full")

type member struct {
	meta domain.Member
	conn core.Connection
}

// room is the per-interview membership set. Its mutex is the sequencing point
// for joins, leaves and fan-out in that room and is never held across rooms.
type room struct {
	mu      sync.Mutex
	meta    domain.Room
	members map[domain.UserID]*member
	// gone is set once the room has been removed from the manager; a joiner
	// holding a stale pointer must go back and fetch a fresh room.
	gone bool
}

func (r *room) idsExcept(uid domain.UserID) []domain.UserID {
	out := make([]domain.UserID, 0, len(r.members))
	for id := range r.members {
		if id != uid {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// fanout enqueues f to every member except uid. Must be called with r.mu held.
func (r *room) fanout(except domain.UserID, f core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for id, m := range r.members {
		if id == except {
			continue
		}
		if err := m.conn.TrySend(f); err != nil {
			if errors.Is(err, core.ErrBackpressure) {
				res.Dropped = append(res.Dropped, core.Recipient{UserID: id, Conn: m.conn})
			}
			continue
		}
		res.SendTo++
	}
	return res
}

// WelcomeFunc builds the first frame a joiner receives from the ids already present.
type WelcomeFunc func(existing []domain.UserID) core.Frame

type JoinResult struct {
	NewRoom  bool
	Existing []domain.UserID
}

type LeaveResult struct {
	Left      bool
	Remaining []domain.UserID
	Publish   core.PublishResult
}

// RoomManager owns the set of rooms and their lifecycle: a room is created by
// its first join and deleted by its last leave.
type RoomManager struct {
	mu         sync.RWMutex
	rooms      map[domain.RoomID]*room
	reg        *Registry
	maxMembers int
	now        func() time.Time
}

// NewRoomManager returns a manager backed by reg. maxMembers <= 0 means no cap.
func NewRoomManager(reg *Registry, maxMembers int) *RoomManager {
	return &RoomManager{
		rooms:      make(map[domain.RoomID]*room),
		reg:        reg,
		maxMembers: maxMembers,
		now:        time.Now,
	}
}

func (m *RoomManager) Registry() *Registry { return m.reg }

func (m *RoomManager) get(id domain.RoomID) (*room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

func (m *RoomManager) getOrCreate(id domain.RoomID) *room {
	if r, ok := m.get(id); ok {
		return r
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r
	}
	r := &room{
		meta:    domain.Room{ID: id},
		members: make(map[domain.UserID]*member),
	}
	m.rooms[id] = r
	return r
}

// drop removes r from the index. Called with r.mu held; lock order is room then manager.
func (m *RoomManager) drop(r *room) {
	r.gone = true
	m.mu.Lock()
	if cur, ok := m.rooms[r.meta.ID]; ok && cur == r {
		delete(m.rooms, r.meta.ID)
	}
	m.mu.Unlock()
	log.Info().Str("module", "app.rooms").Str("room", string(r.meta.ID)).Msg("room closed")
}

// Join adds uid to the room, creating the room if needed. If uid already had a
// live connection in this room it is replaced and the old one closed. welcome,
// when set, is enqueued to conn before any other member can publish to it.
func (m *RoomManager) Join(roomID domain.RoomID, uid domain.UserID, role domain.Role, conn core.Connection, welcome WelcomeFunc) (JoinResult, error) {
	for {
		r := m.getOrCreate(roomID)
		r.mu.Lock()
		if r.gone {
			r.mu.Unlock()
			continue
		}
		_, rejoin := r.members[uid]
		if !rejoin && m.maxMembers > 0 && len(r.members) >= m.maxMembers {
			r.mu.Unlock()
			return JoinResult{}, ErrRoomFull
		}

		now := m.now()
		res := JoinResult{
			NewRoom:  len(r.members) == 0,
			Existing: r.idsExcept(uid),
		}
		if res.NewRoom {
			r.meta.CreatedAt = now
		}
		if welcome != nil {
			if err := conn.TrySend(welcome(res.Existing)); err != nil {
				if len(r.members) == 0 {
					m.drop(r)
				}
				r.mu.Unlock()
				log.Warn().Err(err).Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(uid)).
					Msg("welcome not delivered, join aborted")
				return JoinResult{}, fmt.Errorf("enqueue welcome: %w", err)
			}
		}
		prev := m.reg.Register(roomID, uid, conn)
		r.members[uid] = &member{meta: domain.NewMember(uid, role, now), conn: conn}
		size := len(r.members)
		r.mu.Unlock()

		if prev != nil {
			prev.Close(core.CloseSuperseded, "superseded by a newer connection")
		}
		log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(uid)).
			Str("role", string(role)).Bool("new_room", res.NewRoom).Bool("superseded", prev != nil).
			Int("size", size).Msg("member joined")
		return res, nil
	}
}

// Leave removes uid if conn is still its current connection. farewell, when
// set, is enqueued to every remaining member inside the same critical section.
func (m *RoomManager) Leave(roomID domain.RoomID, uid domain.UserID, conn core.Connection, farewell core.Frame) LeaveResult {
	r, ok := m.get(roomID)
	if !ok {
		return LeaveResult{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gone {
		return LeaveResult{}
	}
	cur, ok := r.members[uid]
	if !ok || cur.conn.ID() != conn.ID() {
		return LeaveResult{}
	}
	delete(r.members, uid)
	m.reg.Unregister(roomID, uid, conn)

	res := LeaveResult{Left: true, Remaining: r.idsExcept("")}
	if farewell != nil {
		res.Publish = r.fanout("", farewell)
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(uid)).
		Int("size", len(r.members)).Msg("member left")
	if len(r.members) == 0 {
		m.drop(r)
	}
	return res
}

// End removes every member and deletes the room. farewell, when set, is
// enqueued to every member except `except` first. The evicted members are
// returned so the caller can close their connections.
func (m *RoomManager) End(roomID domain.RoomID, except domain.UserID, farewell core.Frame) []core.Recipient {
	r, ok := m.get(roomID)
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gone {
		return nil
	}
	if farewell != nil {
		r.fanout(except, farewell)
	}
	out := make([]core.Recipient, 0, len(r.members))
	for uid, mem := range r.members {
		m.reg.Unregister(roomID, uid, mem.conn)
		out = append(out, core.Recipient{UserID: uid, Conn: mem.conn})
	}
	r.members = make(map[domain.UserID]*member)
	m.drop(r)
	return out
}

// Fanout enqueues f to every member of the room except `except`. Calls for the
// same room are serialized, so every recipient sees the same order.
func (m *RoomManager) Fanout(roomID domain.RoomID, except domain.UserID, f core.Frame) core.PublishResult {
	r, ok := m.get(roomID)
	if !ok {
		return core.PublishResult{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gone {
		return core.PublishResult{}
	}
	return r.fanout(except, f)
}

// Lookup returns the live connection of uid in the room.
func (m *RoomManager) Lookup(roomID domain.RoomID, uid domain.UserID) (core.Connection, bool) {
	return m.reg.Get(roomID, uid)
}

func (m *RoomManager) Members(roomID domain.RoomID) []domain.UserID {
	r, ok := m.get(roomID)
	if !ok {
		return []domain.UserID{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idsExcept("")
}

func (m *RoomManager) RoomExists(roomID domain.RoomID) bool {
	_, ok := m.get(roomID)
	return ok
}

func (m *RoomManager) Info(roomID domain.RoomID) (core.RoomInfo, bool) {
	r, ok := m.get(roomID)
	if !ok {
		return core.RoomInfo{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	info := core.RoomInfo{
		ID:          r.meta.ID,
		CreatedAt:   r.meta.CreatedAt.UnixMilli(),
		MemberCount: len(r.members),
		Members:     make([]core.MemberDTO, 0, len(r.members)),
	}
	for _, mem := range r.members {
		info.Members = append(info.Members, core.MemberDTO{
			ID:       mem.meta.UserID,
			Role:     mem.meta.Role,
			JoinedAt: mem.meta.JoinedAt.UnixMilli(),
		})
	}
	sort.Slice(info.Members, func(i, j int) bool { return info.Members[i].ID < info.Members[j].ID })
	return info, true
}

func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	rooms := make([]*room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.gone {
			out = append(out, core.RoomInfo{ID: r.meta.ID, CreatedAt: r.meta.CreatedAt.UnixMilli(), MemberCount: len(r.members)})
		}
		r.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
