package orch

import (
	"encoding/json"

	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
)

// SendSignal relays an initiator's handshake to target.
func (o *Orchestrator) SendSignal(s Session, target domain.UserID, signal json.RawMessage) bool {
	d := o.Relay.SendSignal(s.RoomID, s.UserID, target, signal)
	if d.Dropped != nil {
		o.handleDropped(s.RoomID, []core.Recipient{*d.Dropped})
	}
	return d.Delivered
}

// ReturnSignal relays the receiver's handshake back to caller.
func (o *Orchestrator) ReturnSignal(s Session, caller domain.UserID, signal json.RawMessage) bool {
	d := o.Relay.ReturnSignal(s.RoomID, s.UserID, caller, signal)
	if d.Dropped != nil {
		o.handleDropped(s.RoomID, []core.Recipient{*d.Dropped})
	}
	return d.Delivered
}

// Broadcast fans v out to the other members of the session's room.
func (o *Orchestrator) Broadcast(s Session, v any) (int, error) {
	res, err := o.Router.Broadcast(s.RoomID, s.UserID, v)
	if err != nil {
		return 0, err
	}
	o.handleDropped(s.RoomID, res.Dropped)
	return res.SendTo, nil
}
