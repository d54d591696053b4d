package app

import (
	"encoding/json"
	"errors"

	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

// Delivery is the outcome of a point-to-point relay.
type Delivery struct {
	Delivered bool
	// Dropped is set when the target's queue was full.
	Dropped *core.Recipient
}

// Relay routes WebRTC handshake payloads between two named members of the
// same room. Payloads are opaque and never stored; a missing target is a
// silent drop.
type Relay struct {
	rooms *RoomManager
}

func NewRelay(rooms *RoomManager) *Relay {
	return &Relay{rooms: rooms}
}

// SendSignal delivers an initiator's offer to target as user-joined.
func (rl *Relay) SendSignal(roomID domain.RoomID, from, target domain.UserID, signal json.RawMessage) Delivery {
	return rl.deliver(roomID, from, target, core.NewUserJoined(from, signal))
}

// ReturnSignal delivers the receiver's answer back to the initiator as
// receiving-returned-signal.
func (rl *Relay) ReturnSignal(roomID domain.RoomID, from, caller domain.UserID, signal json.RawMessage) Delivery {
	return rl.deliver(roomID, from, caller, core.NewReceivingReturnedSignal(from, signal))
}

func (rl *Relay) deliver(roomID domain.RoomID, from, to domain.UserID, v any) Delivery {
	if from == to {
		return Delivery{}
	}
	conn, ok := rl.rooms.Lookup(roomID, to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("room", string(roomID)).Str("from", string(from)).Str("to", string(to)).Msg("target not connected, dropped")
		return Delivery{}
	}
	f, err := core.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("encode")
		return Delivery{}
	}
	if err := conn.TrySend(f); err != nil {
		if errors.Is(err, core.ErrBackpressure) {
			return Delivery{Dropped: &core.Recipient{UserID: to, Conn: conn}}
		}
		return Delivery{}
	}
	return Delivery{Delivered: true}
}
