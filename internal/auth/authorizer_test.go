package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mockorbit/interviewd/internal/auth"
	authmocks "github.com/mockorbit/interviewd/internal/auth/mocks"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/mockorbit/interviewd/internal/store"
	storemocks "github.com/mockorbit/interviewd/internal/store/mocks"
	"go.uber.org/mock/gomock"
)

func interview(status domain.InterviewStatus) domain.Interview {
	return domain.Interview{ID: "iv1", Interviewer: "alice", Interviewee: "bob", Status: status}
}

func TestAuthorize(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name     string
		tokenUID domain.UserID
		tokenErr error
		iv       domain.Interview
		ivErr    error
		userID   domain.UserID
		wantRole domain.Role
		wantErr  error
	}{
		{name: "interviewer", tokenUID: "alice", iv: interview(domain.StatusScheduled), userID: "alice", wantRole: domain.RoleInterviewer},
		{name: "interviewee", tokenUID: "bob", iv: interview(domain.StatusInProgress), userID: "bob", wantRole: domain.RoleInterviewee},
		{name: "bad token", tokenErr: auth.ErrInvalidToken, userID: "alice", wantErr: auth.ErrInvalidToken},
		{name: "mismatch", tokenUID: "mallory", userID: "alice", wantErr: auth.ErrUserMismatch},
		{name: "not found", tokenUID: "alice", ivErr: store.ErrInterviewNotFound, userID: "alice", wantErr: auth.ErrInterviewNotFound},
		{name: "store failure", tokenUID: "alice", ivErr: boom, userID: "alice", wantErr: boom},
		{name: "stranger", tokenUID: "carol", iv: interview(domain.StatusScheduled), userID: "carol", wantErr: auth.ErrNotParticipant},
		{name: "completed", tokenUID: "alice", iv: interview(domain.StatusCompleted), userID: "alice", wantErr: auth.ErrInterviewClosed},
		{name: "cancelled", tokenUID: "bob", iv: interview(domain.StatusCancelled), userID: "bob", wantErr: auth.ErrInterviewClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tokens := authmocks.NewMockTokenValidator(ctrl)
			interviews := storemocks.NewMockInterviews(ctrl)

			tokens.EXPECT().Validate(gomock.Any(), "tok").Return(tc.tokenUID, tc.tokenErr)
			if tc.tokenErr == nil && tc.tokenUID == tc.userID {
				interviews.EXPECT().GetInterview(gomock.Any(), domain.RoomID("iv1")).Return(tc.iv, tc.ivErr)
			}

			g, err := auth.NewAuthorizer(tokens, interviews).Authorize(context.Background(), "iv1", tc.userID, "tok")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Role != tc.wantRole || g.UserID != tc.userID || g.RoomID != "iv1" {
				t.Fatalf("unexpected grant %+v", g)
			}
		})
	}
}
