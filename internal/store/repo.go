package store

import (
	"context"
	"errors"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

type AttemptListOpts struct {
	AssessmentID string
	UserID       string
	Status       string // optional: in_progress|submitted
	Limit        int
	Offset       int
}

type Store interface {
	PutDefinition(ctx context.Context, d assessment.Definition) error
	GetDefinition(ctx context.Context, id string) (assessment.Definition, error)
	ListDefinitions(ctx context.Context) ([]assessment.Definition, error)

	NewAttempt(ctx context.Context, assessmentID, userID string) (Attempt, error)
	SaveResponses(ctx context.Context, attemptID string, resp assessment.Responses) (Attempt, error)
	// Submit scores the attempt and freezes it. Submitting twice returns the stored
	// result with submitted == false.
	Submit(ctx context.Context, attemptID string) (a Attempt, submitted bool, err error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}

// Seed upserts every definition, e.g. the built-in catalog at startup.
func Seed(ctx context.Context, s Store, defs []assessment.Definition) error {
	for _, d := range defs {
		if err := s.PutDefinition(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
