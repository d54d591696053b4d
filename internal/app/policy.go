package app

import (
	"fmt"

	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send queue is full.
type Policy interface {
	OnBackPressure(roomID domain.RoomID, slow core.Recipient) BackpressureAction
}

// SimplePolicy force-closes the slow member; its leave then runs like any disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, core.Recipient) BackpressureAction {
	return KickMember
}

// LossyPolicy keeps the member and loses the frame.
type LossyPolicy struct{}

func (LossyPolicy) OnBackPressure(domain.RoomID, core.Recipient) BackpressureAction {
	return DropFrame
}

// PolicyFor maps the send_queue.overflow config value to a Policy.
func PolicyFor(name string) (Policy, error) {
	switch name {
	case "", "close":
		return SimplePolicy{}, nil
	case "drop":
		return LossyPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown overflow policy %q", name)
}
