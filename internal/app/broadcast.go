package app

import (
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

// Router fans room-scoped events out to every member but the sender. Updates
// are forwarded as-is: concurrent code or whiteboard edits are last-writer-wins.
type Router struct {
	rooms *RoomManager
}

func NewRouter(rooms *RoomManager) *Router {
	return &Router{rooms: rooms}
}

// Broadcast encodes v once and enqueues it to the other members of the room.
func (rt *Router) Broadcast(roomID domain.RoomID, from domain.UserID, v any) (core.PublishResult, error) {
	f, err := core.Encode(v)
	if err != nil {
		return core.PublishResult{}, err
	}
	res := rt.rooms.Fanout(roomID, from, f)
	log.Debug().Str("module", "app.router").Str("room", string(roomID)).Str("from", string(from)).
		Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res, nil
}
