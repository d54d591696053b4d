package core

import (
	"errors"

	"github.com/mockorbit/interviewd/internal/domain"
)

// Frame is one encoded JSON message as written to a socket.
type Frame []byte

// ConnID identifies a single accepted socket. A reconnect of the same user
// gets a fresh ConnID, which is what supersession is keyed on.
type ConnID string

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Recipient
}

// Recipient is a member whose queue refused a frame.
type Recipient struct {
	UserID domain.UserID
	Conn   Connection
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	CreatedAt   int64         `json:"created_at"`
	MemberCount int           `json:"member_count"`
	Members     []MemberDTO   `json:"members,omitempty"`
}

// MemberDTO is a read-only view of a member for APIs.
type MemberDTO struct {
	ID       domain.UserID `json:"id"`
	Role     domain.Role   `json:"role"`
	JoinedAt int64         `json:"joined_at"`
}
