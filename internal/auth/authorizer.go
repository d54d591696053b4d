package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/mockorbit/interviewd/internal/store"
)

var (
	ErrUserMismatch      = errors.New("token does not belong to user")
	ErrInterviewNotFound = errors.New("interview not found")
	ErrNotParticipant    = errors.New("user is not a participant")
	ErrInterviewClosed   = errors.New("interview is closed")
)

// Grant is the outcome of a successful authorization.
type Grant struct {
	RoomID domain.RoomID
	UserID domain.UserID
	Role   domain.Role
}

// Authorizer decides whether a user may join an interview room.
type Authorizer struct {
	Tokens     TokenValidator
	Interviews store.Interviews
}

func NewAuthorizer(tokens TokenValidator, interviews store.Interviews) *Authorizer {
	return &Authorizer{Tokens: tokens, Interviews: interviews}
}

// Authorize validates token, checks it was issued to userID and that userID
// takes part in an interview that is still open.
func (a *Authorizer) Authorize(ctx context.Context, roomID domain.RoomID, userID domain.UserID, token string) (Grant, error) {
	uid, err := a.Tokens.Validate(ctx, token)
	if err != nil {
		return Grant{}, err
	}
	if uid != userID {
		return Grant{}, ErrUserMismatch
	}

	iv, err := a.Interviews.GetInterview(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrInterviewNotFound) {
			return Grant{}, fmt.Errorf("%w: %s", ErrInterviewNotFound, roomID)
		}
		return Grant{}, fmt.Errorf("loading interview %s: %w", roomID, err)
	}
	role, ok := iv.RoleOf(uid)
	if !ok {
		return Grant{}, ErrNotParticipant
	}
	if !iv.Open() {
		return Grant{}, ErrInterviewClosed
	}
	return Grant{RoomID: roomID, UserID: uid, Role: role}, nil
}
