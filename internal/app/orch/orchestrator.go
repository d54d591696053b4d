// Package orch ties the room manager, relay and router together into the
// session-level operations the gateway performs for each connection.
package orch

import (
	"github.com/mockorbit/interviewd/internal/app"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Rooms  *app.RoomManager
	Relay  *app.Relay
	Router *app.Router
	Policy app.Policy
}

func New(rooms *app.RoomManager, policy app.Policy) *Orchestrator {
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	return &Orchestrator{
		Rooms:  rooms,
		Relay:  app.NewRelay(rooms),
		Router: app.NewRouter(rooms),
		Policy: policy,
	}
}

// Session is one authenticated connection bound to a room.
type Session struct {
	RoomID domain.RoomID
	UserID domain.UserID
	Role   domain.Role
	Conn   core.Connection
}

// handleDropped applies the backpressure policy to members whose queue overflowed.
func (o *Orchestrator) handleDropped(roomID domain.RoomID, dropped []core.Recipient) {
	for _, slow := range dropped {
		switch o.Policy.OnBackPressure(roomID, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(roomID)).Str("user", string(slow.UserID)).
				Str("conn", string(slow.Conn.ID())).Msg("send queue overflow, kicking")
			o.kick(Session{RoomID: roomID, UserID: slow.UserID, Conn: slow.Conn}, core.CloseBackpressure, "send queue overflow")
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("user", string(slow.UserID)).Msg("send queue overflow, frame dropped")
		}
	}
}

// kick closes the connection and runs the normal leave path for it.
func (o *Orchestrator) kick(s Session, code int, reason string) {
	s.Conn.Close(code, reason)
	o.Leave(s)
}
