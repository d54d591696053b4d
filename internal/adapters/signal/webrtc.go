package signal

import (
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleSendingSignal forwards an initiator's offer to userToSignal. The
// callerId sent by the client is ignored; the authenticated user is used.
func (ctl *Controller) handleSendingSignal(s *session, data []byte) error {
	var m core.SendingSignal
	if err := core.DecodePayload(core.TypeSendingSignal, data, &m); err != nil {
		return err
	}
	if !ctl.Orch.SendSignal(s.Session, domain.UserID(m.UserToSignal), m.Signal) {
		log.Debug().Str("module", "signal").Str("room", string(s.RoomID)).Str("from", string(s.UserID)).
			Str("to", m.UserToSignal).Msg("sending-signal not delivered")
	}
	return nil
}

func (ctl *Controller) handleReturningSignal(s *session, data []byte) error {
	var m core.ReturningSignal
	if err := core.DecodePayload(core.TypeReturningSignal, data, &m); err != nil {
		return err
	}
	if !ctl.Orch.ReturnSignal(s.Session, domain.UserID(m.CallerID), m.Signal) {
		log.Debug().Str("module", "signal").Str("room", string(s.RoomID)).Str("from", string(s.UserID)).
			Str("to", m.CallerID).Msg("returning-signal not delivered")
	}
	return nil
}
