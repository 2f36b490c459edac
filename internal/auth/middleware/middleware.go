package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
)

const (
	issuer = "mindengage-selfcheck"
	// guest cookies are signed with the same key but a different issuer, so a
	// cookie value is never accepted as a bearer token and vice versa.
	guestCookieIssuer = issuer + "/guest-cookie"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{hmac: []byte(secret), ttl: 8 * time.Hour}
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role,omitempty"` // member|editor|admin
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	return a.IssueJWTWithTTL(sub, role, a.ttl)
}

func (a *AuthService) IssueJWTWithTTL(sub, role string, ttl time.Duration) (string, error) {
	return a.issue(issuer, sub, role, ttl)
}

// IssueGuestCookie signs a long-lived guest identity. It carries no role.
func (a *AuthService) IssueGuestCookie(sub string, ttl time.Duration) (string, error) {
	return a.issue(guestCookieIssuer, sub, "", ttl)
}

func (a *AuthService) issue(iss, sub, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

// Parse validates an access token.
func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	return a.parse(tokenStr, issuer)
}

// ParseGuestCookie validates a token minted by IssueGuestCookie.
func (a *AuthService) ParseGuestCookie(tokenStr string) (*Claims, error) {
	return a.parse(tokenStr, guestCookieIssuer)
}

func (a *AuthService) parse(tokenStr, iss string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(iss))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Sub == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// Credentials decides who may log in locally.
type Credentials struct {
	AdminUser     string
	AdminPassHash string // bcrypt
	// AllowDevUsers accepts username==password for members and editors (offline mode only).
	AllowDevUsers bool
}

// POST /auth/login  { "username": "...", "password": "...", "role": "member|editor" }
func LoginHandler(a *AuthService, creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role, ok := authenticate(creds, req.Username, req.Password, req.Role)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

func authenticate(creds Credentials, user, pass, role string) (string, bool) {
	// "|" marks federated and guest subjects (guest|..., google|...); local
	// logins must not be able to claim them.
	if user == "" || strings.Contains(user, "|") {
		return "", false
	}
	if creds.AdminUser != "" && user == creds.AdminUser {
		if bcrypt.CompareHashAndPassword([]byte(creds.AdminPassHash), []byte(pass)) != nil {
			return "", false
		}
		return rbac.RoleAdmin, true
	}
	if !creds.AllowDevUsers || user != pass {
		return "", false
	}
	switch role {
	case "", rbac.RoleMember:
		return rbac.RoleMember, true
	case rbac.RoleEditor:
		return rbac.RoleEditor, true
	}
	return "", false
}

// JWTMiddleware validates the bearer token and stores subject and role in the
// request context for rbac.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
