package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
	"github.com/mind-engage/mindengage-selfcheck/internal/catalog"
	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
)

// GET /assessments
func ListAssessmentsHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defs, err := d.Store.ListDefinitions(r.Context())
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out := make([]catalog.Summary, 0, len(defs))
		for _, def := range defs {
			out = append(out, catalog.Summarize(def))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /assessments/{id}
// Bands are only shown to roles that can edit; members see them through results.
func GetAssessmentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := d.Store.GetDefinition(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		if !rbac.Can(r.Context(), "assessment:edit") {
			def.Bands = nil
		}
		writeJSON(w, http.StatusOK, def)
	}
}

// PUT /assessments/{id}
func PutAssessmentHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var def assessment.Definition
		if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		if def.ID == "" {
			def.ID = id
		}
		if def.ID != id {
			badRequest(w, "id in body does not match path")
			return
		}
		if err := def.Validate(); err != nil {
			badRequest(w, "invalid assessment: "+err.Error())
			return
		}
		if err := d.Store.PutDefinition(r.Context(), def); err != nil {
			writeError(w, d.Log, err)
			return
		}
		d.Log.Info("assessment updated", "assessment", def.ID, "by", rbac.SubjectFromContext(r.Context()))
		writeJSON(w, http.StatusOK, catalog.Summarize(def))
	}
}

type scoreReq struct {
	Responses assessment.Responses `json:"responses"`
}

// POST /assessments/{id}/score
// Scores a response map without storing anything.
func ScoreHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if errors.Is(err, assessment.ErrUnknownOption) {
				d.Metrics.ObserveError("unknown_option")
			}
			badRequest(w, "bad json: "+err.Error())
			return
		}
		def, err := d.Store.GetDefinition(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := assessment.Evaluate(def, req.Responses)
		if err != nil {
			d.Metrics.ObserveError("evaluate")
			writeError(w, d.Log, err)
			return
		}
		d.Metrics.ObserveScore(def.ID, out.Band.ID, out.Totals.Total, out.Totals.MaxTotal)
		writeJSON(w, http.StatusOK, out.Result)
	}
}
