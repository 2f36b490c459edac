package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	authmw "github.com/mind-engage/mindengage-selfcheck/internal/auth/middleware"
	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
)

const (
	guestCookie = "sc_guest"
	guestPrefix = "guest|"
	guestTTL    = 30 * 24 * time.Hour
)

// GuestLoginHandler lets the app take assessments without an account. The guest
// identity lives in a signed cookie so the same device keeps its attempt history.
func GuestLoginHandler(a *authmw.AuthService, secureCookie bool) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		guestID := ""
		if c, err := r.Cookie(guestCookie); err == nil && c.Value != "" {
			if claims, err := a.ParseGuestCookie(c.Value); err == nil && strings.HasPrefix(claims.Sub, guestPrefix) {
				guestID = claims.Sub
			}
		}
		if guestID == "" {
			guestID = guestPrefix + uuid.NewString()
		}

		tok, err := a.IssueJWT(guestID, rbac.RoleMember)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		long, err := a.IssueGuestCookie(guestID, guestTTL)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		sameSite := http.SameSiteLaxMode
		if secureCookie {
			sameSite = http.SameSiteNoneMode
		}
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookie,
			Value:    long,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: sameSite,
			Expires:  time.Now().Add(guestTTL),
		})
		w.Header().Set("Content-Type", "application/json")
		name := "guest"
		if id := strings.TrimPrefix(guestID, guestPrefix); len(id) >= 8 {
			name += "-" + id[:8]
		}
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: name})
	}
}
