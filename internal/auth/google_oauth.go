package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	authmw "github.com/mind-engage/mindengage-selfcheck/internal/auth/middleware"
	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
)

const (
	stateCookie    = "sc_oauth_state"
	redirectCookie = "sc_post_auth_redirect"
	googlePrefix   = "google|"
)

var googleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// GoogleOAuth signs members in with their Google account (online mode).
type GoogleOAuth struct {
	OAuth2       *oauth2.Config
	TokenInfoURL string
	AllowedHD    string // optional hosted domain restriction
	PublicURL    string
	SecureCookie bool
}

func NewGoogleOAuth(clientID, clientSecret, redirectURI, allowedHD, publicURL string, secureCookie bool) *GoogleOAuth {
	return &GoogleOAuth{
		OAuth2: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		TokenInfoURL: "https://oauth2.googleapis.com/tokeninfo",
		AllowedHD:    allowedHD,
		PublicURL:    strings.TrimRight(publicURL, "/"),
		SecureCookie: secureCookie,
	}
}

// GET /auth/google/login?redirect=/somewhere
func (g *GoogleOAuth) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next := r.URL.Query().Get("redirect")
		if next == "" {
			next = r.Referer()
		}
		if next == "" {
			next = g.home()
		}
		if !g.sameOrigin(next) {
			http.Error(w, "bad redirect", http.StatusBadRequest)
			return
		}

		state := uuid.NewString()
		g.setCookie(w, stateCookie, state, 10*time.Minute)
		g.setCookie(w, redirectCookie, url.QueryEscape(next), 10*time.Minute)

		opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("include_granted_scopes", "true")}
		if g.AllowedHD != "" {
			opts = append(opts, oauth2.SetAuthURLParam("hd", g.AllowedHD))
		}
		http.Redirect(w, r, g.OAuth2.AuthCodeURL(state, opts...), http.StatusFound)
	}
}

type tokenInfo struct {
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Hd            string `json:"hd"`
}

// GET /auth/google/callback exchanges the code, checks the id_token and hands
// an access token back to the app on the redirect URL.
func (g *GoogleOAuth) CallbackHandler(a *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(stateCookie)
		if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
			http.Error(w, "bad state", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		tok, err := g.OAuth2.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "token exchange error", http.StatusBadGateway)
			return
		}
		idToken, _ := tok.Extra("id_token").(string)
		if idToken == "" {
			http.Error(w, "bad token response", http.StatusBadGateway)
			return
		}
		ti, err := g.tokenInfo(r, idToken)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		switch {
		case ti.Aud != g.OAuth2.ClientID:
			http.Error(w, "invalid aud", http.StatusUnauthorized)
			return
		case ti.Iss != "accounts.google.com" && ti.Iss != "https://accounts.google.com":
			http.Error(w, "invalid iss", http.StatusUnauthorized)
			return
		case ti.Sub == "":
			http.Error(w, "missing sub", http.StatusUnauthorized)
			return
		case g.AllowedHD != "" && !strings.EqualFold(ti.Hd, g.AllowedHD):
			http.Error(w, "unauthorized domain", http.StatusUnauthorized)
			return
		}

		access, err := a.IssueJWT(googlePrefix+ti.Sub, rbac.RoleMember)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}

		target := ""
		if c, err := r.Cookie(redirectCookie); err == nil {
			target, _ = url.QueryUnescape(c.Value)
		}
		if target == "" || !g.sameOrigin(target) {
			target = g.home()
		}
		g.setCookie(w, stateCookie, "", -1)
		g.setCookie(w, redirectCookie, "", -1)

		u, err := url.Parse(target)
		if err != nil {
			http.Error(w, "bad redirect", http.StatusBadRequest)
			return
		}
		q := u.Query()
		q.Set("access_token", access)
		u.RawQuery = q.Encode()
		http.Redirect(w, r, u.String(), http.StatusFound)
	}
}

func (g *GoogleOAuth) tokenInfo(r *http.Request, idToken string) (tokenInfo, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet,
		g.TokenInfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return tokenInfo{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return tokenInfo{}, fmt.Errorf("tokeninfo fetch error")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return tokenInfo{}, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}
	var ti tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&ti); err != nil {
		return tokenInfo{}, fmt.Errorf("tokeninfo parse error")
	}
	return ti, nil
}

func (g *GoogleOAuth) home() string {
	if g.PublicURL == "" {
		return "/"
	}
	return g.PublicURL + "/"
}

// sameOrigin allows relative targets, PUBLIC_URL's origin and localhost.
func (g *GoogleOAuth) sameOrigin(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Host == "" || u.Hostname() == "localhost" {
		return true
	}
	base, err := url.Parse(g.PublicURL)
	if err != nil || base.Host == "" {
		return false
	}
	return u.Scheme == base.Scheme && u.Host == base.Host
}

func (g *GoogleOAuth) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, c)
}
