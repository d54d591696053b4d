// Package store is the read side of the external interview service: the
// gateway only needs to know who may join an interview.
package store

import (
	"context"
	"errors"

	"github.com/mockorbit/interviewd/internal/domain"
)

//go:generate mockgen -destination=mocks/interviews.go -package=mocks . Interviews

// Interviews looks up interview records.
type Interviews interface {
	GetInterview(ctx context.Context, id domain.RoomID) (domain.Interview, error)
}

// ErrInterviewNotFound indicates that the requested interview was not found.
var ErrInterviewNotFound = errors.New("interview not found")
