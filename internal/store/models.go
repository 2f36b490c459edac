package store

import "github.com/mind-engage/mindengage-selfcheck/internal/assessment"

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

type Attempt struct {
	ID           string                 `json:"id"`
	AssessmentID string                 `json:"assessment_id"`
	UserID       string                 `json:"user_id"`
	Status       string                 `json:"status"` // in_progress|submitted
	Responses    assessment.Responses   `json:"responses"`
	Result       *assessment.ResultData `json:"result,omitempty"` // set once submitted
	TotalScore   int                    `json:"total_score"`
	MaxTotal     int                    `json:"max_total,omitempty"` // at submit time
	BandID       string                 `json:"band_id,omitempty"`
	StartedAt    int64                  `json:"started_at"`
	SubmittedAt  int64                  `json:"submitted_at,omitempty"`
}

// submittedEvent is the event_log payload for a submitted attempt.
type submittedEvent struct {
	AttemptID    string `json:"attempt_id"`
	AssessmentID string `json:"assessment_id"`
	UserID       string `json:"user_id"`
	TotalScore   int    `json:"total_score"`
	MaxTotal     int    `json:"max_total"`
	BandID       string `json:"band_id"`
}
