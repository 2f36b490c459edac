package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("k1")
	tok, err := a.IssueJWT("u1", rbac.RoleMember)
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Sub)
	assert.Equal(t, rbac.RoleMember, c.Role)

	_, err = NewAuthService("other").Parse(tok)
	assert.Error(t, err, "wrong key")

	expired, err := a.IssueJWTWithTTL("u1", rbac.RoleMember, -time.Minute)
	require.NoError(t, err)
	_, err = a.Parse(expired)
	assert.Error(t, err)
}

func login(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	return rec
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := NewAuthService("k")
	creds := Credentials{AdminUser: "admin", AdminPassHash: string(hash), AllowDevUsers: true}
	h := LoginHandler(a, creds)

	rec := login(t, h, `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, rbac.RoleAdmin, out["role"])
	c, err := a.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Sub)

	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"admin","password":"admin"}`).Code)

	rec = login(t, h, `{"username":"sam","password":"sam","role":"editor"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, rbac.RoleEditor, out["role"])

	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"sam","password":"sam","role":"admin"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"sam","password":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, `{`).Code)

	// guest and federated subjects cannot be claimed through local login
	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"guest|x","password":"guest|x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"google|42","password":"google|42"}`).Code)

	online := LoginHandler(a, Credentials{AdminUser: "admin", AdminPassHash: string(hash)})
	assert.Equal(t, http.StatusUnauthorized, login(t, online, `{"username":"sam","password":"sam"}`).Code)
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("k")
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = rbac.SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueJWT("u9", rbac.RoleEditor)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u9", gotSub)
	assert.Equal(t, rbac.RoleEditor, gotRole)
}

func TestGuestCookieIsNotAnAccessToken(t *testing.T) {
	a := NewAuthService("k")
	cookie, err := a.IssueGuestCookie("guest|abc", time.Hour)
	require.NoError(t, err)

	_, err = a.Parse(cookie)
	assert.Error(t, err)
	c, err := a.ParseGuestCookie(cookie)
	require.NoError(t, err)
	assert.Equal(t, "guest|abc", c.Sub)
	assert.Empty(t, c.Role)

	access, err := a.IssueJWT("guest|abc", rbac.RoleMember)
	require.NoError(t, err)
	_, err = a.ParseGuestCookie(access)
	assert.Error(t, err)

	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
