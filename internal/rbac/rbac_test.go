package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has(RoleMember, "assessment:score"))
	assert.False(t, c.Has(RoleMember, "assessment:edit"))
	assert.False(t, c.Has(RoleMember, "attempt:view-all"))

	assert.True(t, c.Has(RoleEditor, "assessment:edit"), "prefix wildcard")
	assert.True(t, c.Any(RoleEditor, "attempt:view-own", "attempt:view-all"))
	assert.False(t, c.All(RoleEditor, "assessment:edit", "attempt:submit"))

	assert.True(t, c.Has(RoleAdmin, "anything:at-all"))
	assert.False(t, c.Has("stranger", "assessment:view"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("assessment:edit")(ok)

	cases := map[string]int{
		"":         http.StatusForbidden,
		RoleMember: http.StatusForbidden,
		RoleEditor: http.StatusNoContent,
		RoleAdmin:  http.StatusNoContent,
	}
	for role, want := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := WithSubject(WithRole(context.Background(), RoleMember), "guest|abc")
	assert.Equal(t, RoleMember, RoleFromContext(ctx))
	assert.Equal(t, "guest|abc", SubjectFromContext(ctx))
	assert.True(t, Can(ctx, "attempt:view-own"))
	assert.False(t, Can(ctx, "attempt:view-all"))
	assert.Equal(t, "", SubjectFromContext(context.Background()))
}
