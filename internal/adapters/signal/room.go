package signal

import (
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) handleChatMessage(s *session, data []byte) error {
	var m core.ChatMessage
	if err := core.DecodePayload(core.TypeChatMessage, data, &m); err != nil {
		return err
	}
	m.Type = core.TypeChatMessage
	m.Message.SenderID = s.UserID
	if m.Message.Timestamp == 0 {
		m.Message.Timestamp = ctl.now().UnixMilli()
	}
	_, err := ctl.Orch.Broadcast(s.Session, m)
	return err
}

func (ctl *Controller) handleCodeUpdate(s *session, data []byte) error {
	var m core.CodeUpdate
	if err := core.DecodePayload(core.TypeCodeUpdate, data, &m); err != nil {
		return err
	}
	m.Type = core.TypeCodeUpdate
	m.SenderID = s.UserID
	_, err := ctl.Orch.Broadcast(s.Session, m)
	return err
}

func (ctl *Controller) handleWhiteboardUpdate(s *session, data []byte) error {
	var m core.WhiteboardUpdate
	if err := core.DecodePayload(core.TypeWhiteboardUpdate, data, &m); err != nil {
		return err
	}
	m.Type = core.TypeWhiteboardUpdate
	m.SenderID = s.UserID
	_, err := ctl.Orch.Broadcast(s.Session, m)
	return err
}

// handleEndInterview tells the other members the interview is over, then
// closes every connection in the room, this one included.
func (ctl *Controller) handleEndInterview(s *session, _ []byte) error {
	ctl.Orch.EndInterview(s.Session)
	return errStop
}

// handleLeave leaves the room and closes the socket normally.
func (ctl *Controller) handleLeave(s *session, _ []byte) error {
	log.Info().Str("module", "signal").Str("room", string(s.RoomID)).Str("user", string(s.UserID)).Msg("leave")
	ctl.Orch.Leave(s.Session)
	s.conn.Close(core.CloseNormal, "left")
	return errStop
}
