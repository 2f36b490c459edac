package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type eventJSON struct {
	Offset    int64           `json:"offset"`
	SiteID    string          `json:"site_id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// EventsHandler pages through the event log so downstream consumers can follow
// submissions. GET /events?after=<offset>&limit=<n>
func EventsHandler(d Deps) http.HandlerFunc {
	type page struct {
		Events []eventJSON `json:"events"`
		Next   int64       `json:"next"` // pass back as ?after=
	}
	return func(w http.ResponseWriter, r *http.Request) {
		after, err := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		if err != nil || after < 0 {
			after = 0
		}
		evs, err := d.Events.Since(r.Context(), after, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out := page{Events: make([]eventJSON, 0, len(evs)), Next: after}
		for _, e := range evs {
			out.Events = append(out.Events, eventJSON{
				Offset:    e.Offset,
				SiteID:    e.SiteID,
				Type:      e.Type,
				Key:       e.Key,
				Data:      json.RawMessage(e.DataJSON),
				CreatedAt: e.CreatedAt,
			})
			out.Next = e.Offset
		}
		writeJSON(w, http.StatusOK, out)
	}
}
