package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
	"github.com/mind-engage/mindengage-selfcheck/internal/store"
)

// loadOwnAttempt fetches the attempt and checks the caller may see it.
func loadOwnAttempt(d Deps, w http.ResponseWriter, r *http.Request) (store.Attempt, bool) {
	a, err := d.Store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeError(w, d.Log, err)
		return store.Attempt{}, false
	}
	if a.UserID != rbac.SubjectFromContext(r.Context()) && !rbac.Can(r.Context(), "attempt:view-all") {
		// same answer as a missing attempt so ids cannot be probed
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "attempt not found"})
		return store.Attempt{}, false
	}
	return a, true
}

// POST /attempts {"assessment_id": "..."}
func CreateAttemptHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssessmentID string `json:"assessment_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if strings.TrimSpace(req.AssessmentID) == "" {
			badRequest(w, "assessment_id required")
			return
		}
		a, err := d.Store.NewAttempt(r.Context(), req.AssessmentID, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// POST /attempts/{attemptID}/responses {"q1": "Often", ...}
func SaveResponsesHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := loadOwnAttempt(d, w, r); !ok {
			return
		}
		var resp assessment.Responses
		if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		a, err := d.Store.SaveResponses(r.Context(), chi.URLParam(r, "attemptID"), resp)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAttemptHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := loadOwnAttempt(d, w, r)
		if !ok {
			return
		}
		if a.Status == store.StatusSubmitted {
			writeJSON(w, http.StatusOK, a)
			return
		}
		a, submitted, err := d.Store.Submit(r.Context(), a.ID)
		if err != nil {
			d.Metrics.ObserveError("submit")
			writeError(w, d.Log, err)
			return
		}
		if submitted {
			d.Metrics.ObserveScore(a.AssessmentID, a.BandID, a.TotalScore, a.MaxTotal)
			d.Log.Info("attempt submitted", "attempt", a.ID, "assessment", a.AssessmentID, "band", a.BandID)
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := loadOwnAttempt(d, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts?assessment_id=...&user_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all only ever see their own attempts.
func ListAttemptsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		userID := strings.TrimSpace(q.Get("user_id"))
		if !rbac.Can(r.Context(), "attempt:view-all") {
			userID = rbac.SubjectFromContext(r.Context())
		}
		list, err := d.Store.ListAttempts(r.Context(), store.AttemptListOpts{
			AssessmentID: strings.TrimSpace(q.Get("assessment_id")),
			UserID:       userID,
			Status:       strings.TrimSpace(q.Get("status")),
			Limit:        parseIntDefault(q.Get("limit"), 50),
			Offset:       parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
