package signal

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/mockorbit/interviewd/internal/app"
	"github.com/mockorbit/interviewd/internal/auth"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

// closeError is a failed handshake: the connection is closed with code and
// reason and never joins a room.
type closeError struct {
	code   int
	reason string
	err    error
}

func (e *closeError) Error() string { return e.reason }
func (e *closeError) Unwrap() error { return e.err }

func reject(code int, reason string, err error) error {
	return &closeError{code: code, reason: reason, err: err}
}

// closeCodeFor maps authorization and join failures to close codes.
func closeCodeFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return core.CloseUnauthorized, "token expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return core.CloseUnauthorized, "invalid token"
	case errors.Is(err, auth.ErrUserMismatch):
		return core.CloseForbidden, "token does not match user"
	case errors.Is(err, auth.ErrNotParticipant):
		return core.CloseForbidden, "not a participant of this interview"
	case errors.Is(err, auth.ErrInterviewNotFound):
		return core.CloseNotFound, "interview not found"
	case errors.Is(err, auth.ErrInterviewClosed):
		return core.CloseInterviewOver, "interview is over"
	case errors.Is(err, app.ErrRoomFull):
		return core.CloseRoomFull, "room is full"
	}
	return core.CloseInternal, "internal error"
}

// authenticate resolves the handshake into a joined room. The token comes
// from the query string or, when absent, from a first auth frame that must
// arrive within the auth window.
func (ctl *Controller) authenticate(s *session, interviewID, userID, token string) error {
	roomID, err := domain.ParseRoomID(interviewID)
	if err != nil {
		return reject(core.CloseNotFound, "invalid interviewId", err)
	}
	uid, err := domain.ParseUserID(userID)
	if err != nil {
		return reject(core.CloseUnauthorized, "invalid userId", err)
	}
	s.RoomID, s.UserID = roomID, uid

	if token == "" {
		if token, err = ctl.readAuthFrame(s); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctl.ctx, ctl.opts.AuthTimeout)
	defer cancel()
	grant, err := ctl.Auth.Authorize(ctx, roomID, uid, token)
	if err != nil {
		code, reason := closeCodeFor(err)
		return reject(code, reason, err)
	}
	s.Role = grant.Role

	if _, err := ctl.Orch.Join(s.Session); err != nil {
		code, reason := closeCodeFor(err)
		return reject(code, reason, err)
	}
	return nil
}

func (ctl *Controller) readAuthFrame(s *session) (string, error) {
	ws := s.conn.ws
	_ = ws.SetReadDeadline(ctl.now().Add(ctl.opts.AuthTimeout))
	_, data, err := ws.ReadMessage()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", reject(core.CloseAuthTimeout, "authentication timeout", err)
		}
		return "", reject(core.CloseNormal, "", err)
	}
	typ, err := core.DecodeType(data)
	if err != nil || typ != core.TypeAuth {
		return "", reject(core.CloseUnauthorized, "authentication required", err)
	}
	var m core.Auth
	if err := core.DecodePayload(typ, data, &m); err != nil {
		return "", reject(core.CloseUnauthorized, "authentication required", err)
	}
	return m.Token, nil
}

// run owns the connection's read side from handshake to teardown.
func (ctl *Controller) run(s *session, interviewID, userID, token string) {
	stop := context.AfterFunc(ctl.ctx, func() {
		s.conn.Close(core.CloseGoingAway, "server shutting down")
	})
	defer stop()

	if err := ctl.authenticate(s, interviewID, userID, token); err != nil {
		var ce *closeError
		if !errors.As(err, &ce) {
			ce = &closeError{code: core.CloseInternal, reason: "internal error", err: err}
		}
		log.Warn().Err(ce.err).Str("module", "signal").Str("conn", string(s.conn.id)).
			Str("room", string(s.RoomID)).Str("user", string(s.UserID)).
			Int("code", ce.code).Msg("handshake rejected")
		s.conn.Close(ce.code, ce.reason)
		s.setState(stateClosed)
		return
	}
	s.setState(stateJoined)
	log.Info().Str("module", "signal").Str("conn", string(s.conn.id)).Str("room", string(s.RoomID)).
		Str("user", string(s.UserID)).Str("role", string(s.Role)).Msg("joined")

	ctl.readPump(s)

	s.setState(stateClosing)
	ctl.Orch.Leave(s.Session)
	s.conn.Close(core.CloseNormal, "")
	s.setState(stateClosed)
	log.Info().Str("module", "signal").Str("conn", string(s.conn.id)).Str("room", string(s.RoomID)).
		Str("user", string(s.UserID)).Msg("disconnected")
}

// deadline returns the read deadline for the next frame.
func (ctl *Controller) deadline() time.Time {
	return ctl.now().Add(ctl.opts.PongWait)
}
