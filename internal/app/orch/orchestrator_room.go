package orch

import (
	"context"
	"time"

	"github.com/mockorbit/interviewd/internal/app"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join binds the session to its room. The connection receives all-users with
// the members already present as its first frame.
func (o *Orchestrator) Join(s Session) (app.JoinResult, error) {
	return o.Rooms.Join(s.RoomID, s.UserID, s.Role, s.Conn, func(existing []domain.UserID) core.Frame {
		return core.MustEncode(core.NewAllUsers(existing))
	})
}

// Leave removes the session and tells the remaining members. It reports false
// when the session had already left or was superseded.
func (o *Orchestrator) Leave(s Session) bool {
	res := o.Rooms.Leave(s.RoomID, s.UserID, s.Conn, core.MustEncode(core.NewUserDisconnected(s.UserID)))
	if !res.Left {
		return false
	}
	o.handleDropped(s.RoomID, res.Publish.Dropped)
	return true
}

// EndInterview notifies the other members, removes everyone and closes every
// connection in the room, the sender's included.
func (o *Orchestrator) EndInterview(s Session) int {
	n := o.closeRoom(s.RoomID, s.UserID)
	log.Info().Str("module", "orch").Str("room", string(s.RoomID)).Str("by", string(s.UserID)).Int("closed", n).Msg("interview ended")
	return n
}

// EvictRoom ends a room from outside (admin API, shutdown).
func (o *Orchestrator) EvictRoom(roomID domain.RoomID) int {
	return o.closeRoom(roomID, "")
}

func (o *Orchestrator) closeRoom(roomID domain.RoomID, by domain.UserID) int {
	evicted := o.Rooms.End(roomID, by, core.MustEncode(core.NewInterviewEnded()))
	for _, e := range evicted {
		e.Conn.Close(core.CloseNormal, "interview ended")
	}
	return len(evicted)
}

// KickUser force-closes uid's connection in the room.
func (o *Orchestrator) KickUser(roomID domain.RoomID, uid domain.UserID, reason string) bool {
	conn, ok := o.Rooms.Lookup(roomID, uid)
	if !ok {
		return false
	}
	o.kick(Session{RoomID: roomID, UserID: uid, Conn: conn}, core.CloseForbidden, reason)
	return true
}

// Shutdown closes every joined connection with going-away. Rooms are not
// ended: each connection's teardown runs the normal leave path.
func (o *Orchestrator) Shutdown() int {
	n := 0
	for _, r := range o.Rooms.List() {
		for _, uid := range o.Rooms.Members(r.ID) {
			if conn, ok := o.Rooms.Lookup(r.ID, uid); ok {
				conn.Close(core.CloseGoingAway, "server shutting down")
				n++
			}
		}
	}
	log.Info().Str("module", "orch").Int("closed", n).Msg("shutdown")
	return n
}

// Touch records inbound activity for idle detection.
func (o *Orchestrator) Touch(s Session) {
	o.Rooms.Registry().Touch(s.RoomID, s.UserID, s.Conn)
}

// ReapIdle closes connections with no inbound activity since now-timeout.
func (o *Orchestrator) ReapIdle(now time.Time, timeout time.Duration) int {
	n := 0
	for _, e := range o.Rooms.Registry().Idle(now.Add(-timeout)) {
		log.Info().Str("module", "orch").Str("room", string(e.RoomID)).Str("user", string(e.UserID)).
			Time("last_activity", e.LastActivity).Msg("closing idle connection")
		o.kick(Session{RoomID: e.RoomID, UserID: e.UserID, Conn: e.Conn}, core.CloseIdle, "idle timeout")
		n++
	}
	return n
}

// RunReaper calls ReapIdle every interval until ctx is done. A zero timeout disables it.
func (o *Orchestrator) RunReaper(ctx context.Context, interval, timeout time.Duration) error {
	if timeout <= 0 {
		<-ctx.Done()
		return nil
	}
	if interval <= 0 {
		interval = timeout / 2
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			o.ReapIdle(now, timeout)
		}
	}
}
