package domain

// InterviewStatus mirrors the status column of the interview record.
type InterviewStatus string

const (
	StatusScheduled  InterviewStatus = "scheduled"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
	StatusCancelled  InterviewStatus = "cancelled"
)

// Interview is the slice of the external interview record the gateway needs
// to authorize a connection.
type Interview struct {
	ID          RoomID
	Interviewer UserID
	Interviewee UserID
	Status      InterviewStatus
}

// Open reports whether participants may still connect.
func (i Interview) Open() bool {
	return i.Status != StatusCompleted && i.Status != StatusCancelled
}

// RoleOf returns the participant role of uid, or false if uid is not part of the interview.
func (i Interview) RoleOf(uid UserID) (Role, bool) {
	switch uid {
	case i.Interviewer:
		return RoleInterviewer, true
	case i.Interviewee:
		return RoleInterviewee, true
	}
	return "", false
}
