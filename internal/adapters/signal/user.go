package signal

import (
	"errors"

	"github.com/mockorbit/interviewd/internal/app"
	"github.com/mockorbit/interviewd/internal/app/orch"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type connState int

const (
	stateConnecting connState = iota
	stateAuthenticating
	stateJoined
	stateClosing
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateAuthenticating:
		return "authenticating"
	case stateJoined:
		return "joined"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// session is the gateway-side state of one connection. It is only touched by
// the connection's read goroutine.
type session struct {
	ctl     *Controller
	conn    *wsConn
	state   connState
	limiter *rate.Limiter
	orch.Session
}

func newSession(ctl *Controller, conn *wsConn) *session {
	return &session{
		ctl:     ctl,
		conn:    conn,
		state:   stateConnecting,
		limiter: newFrameLimiter(ctl.opts.EventsPerSecond, ctl.opts.Burst),
		Session: orch.Session{Conn: conn},
	}
}

func (s *session) setState(st connState) {
	log.Debug().Str("module", "signal").Str("conn", string(s.conn.id)).
		Str("room", string(s.RoomID)).Str("user", string(s.UserID)).
		Str("from", s.state.String()).Str("to", st.String()).Msg("state")
	s.state = st
}

// reply enqueues v to this connection only.
func (s *session) reply(v any) {
	f, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("reply marshal")
		return
	}
	if err := s.conn.TrySend(f); errors.Is(err, core.ErrBackpressure) {
		if s.ctl.Orch.Policy.OnBackPressure(s.RoomID, core.Recipient{UserID: s.UserID, Conn: s.conn}) == app.KickMember {
			s.conn.Close(core.CloseBackpressure, "send queue overflow")
		}
	}
}

func (s *session) replyError(msg string) {
	s.reply(core.NewError(msg))
}
