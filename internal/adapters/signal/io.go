package signal

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/rs/zerolog/log"
)

// errStop ends the read loop after a handler has already torn the session down.
var errStop = errors.New("session over")

type handlerFunc func(s *session, data []byte) error

func (ctl *Controller) dispatchTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		core.TypeSendingSignal:    ctl.handleSendingSignal,
		core.TypeReturningSignal:  ctl.handleReturningSignal,
		core.TypeChatMessage:      ctl.handleChatMessage,
		core.TypeCodeUpdate:       ctl.handleCodeUpdate,
		core.TypeWhiteboardUpdate: ctl.handleWhiteboardUpdate,
		core.TypeEndInterview:     ctl.handleEndInterview,
		core.TypeLeave:            ctl.handleLeave,
		core.TypePing:             ctl.handlePing,
		core.TypeAuth:             ctl.handleAuth,
	}
}

func (c *wsConn) writePump(pingPeriod, writeWait time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				code, reason := c.closeStatus()
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(s *session) {
	ws := s.conn.ws
	ws.SetReadLimit(ctl.opts.ReadLimit)
	_ = ws.SetReadDeadline(ctl.deadline())
	ws.SetPongHandler(func(string) error {
		ctl.Orch.Touch(s.Session)
		return ws.SetReadDeadline(ctl.deadline())
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.conn.id)).Msg("readPump read error")
			}
			return
		}
		_ = ws.SetReadDeadline(ctl.deadline())
		ctl.Orch.Touch(s.Session)
		if err := ctl.handleFrame(s, data); errors.Is(err, errStop) {
			return
		}
	}
}

func (ctl *Controller) handleFrame(s *session, data []byte) error {
	if !allowFrame(s.limiter) {
		s.replyError("rate limit exceeded")
		return nil
	}
	typ, err := core.DecodeType(data)
	if err != nil {
		s.replyError(err.Error())
		return nil
	}
	h, ok := ctl.handlers[typ]
	if !ok {
		log.Debug().Str("module", "signal").Str("type", typ).Str("user", string(s.UserID)).Msg("unknown type")
		s.replyError("unknown message type: " + typ)
		return nil
	}
	err = h(s, data)
	switch {
	case err == nil, errors.Is(err, errStop):
		return err
	case core.IsFrameError(err):
		s.replyError(err.Error())
	default:
		log.Error().Err(err).Str("module", "signal").Str("type", typ).Str("user", string(s.UserID)).Msg("handler")
		s.replyError("internal error")
	}
	return nil
}
