package domain

import "time"

// Role is carried for display only; the core never enforces it.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleInterviewee Role = "interviewee"
)

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	UserID   UserID
	Role     Role
	JoinedAt time.Time
}

func NewMember(id UserID, role Role, at time.Time) Member {
	return Member{UserID: id, Role: role, JoinedAt: at}
}
