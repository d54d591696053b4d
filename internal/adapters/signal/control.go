package signal

import "github.com/mockorbit/interviewd/internal/core"

func (ctl *Controller) handlePing(s *session, _ []byte) error {
	s.reply(core.NewPong())
	return nil
}

// handleAuth rejects a second auth frame; the handshake already happened.
func (ctl *Controller) handleAuth(s *session, _ []byte) error {
	return &core.FrameError{Type: core.TypeAuth, Msg: "already authenticated"}
}
