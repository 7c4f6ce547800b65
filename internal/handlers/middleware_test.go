package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyan0723/study--student-mangement/types"
)

// fakeAuthenticator maps raw token strings onto identities.
type fakeAuthenticator struct {
	identities map[string]types.Identity
	err        error
}

func (a *fakeAuthenticator) Authenticate(_ context.Context, token string) (types.Identity, error) {
	if a.err != nil {
		return types.Identity{}, a.err
	}
	identity, ok := a.identities[token]
	if !ok {
		return types.Identity{}, types.ErrInvalidToken("Invalid or expired access token")
	}
	return identity, nil
}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusOK, "reached")
	})
}

func identityEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusOK, "anonymous")
			return
		}
		writeData(w, http.StatusOK, identity, "")
	})
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequireAuthMissingToken(t *testing.T) {
	gate := RequireAuth(&fakeAuthenticator{}, nil)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "wrong scheme", header: "Basic abc123"},
		{name: "bare bearer", header: "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/students", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			gate(okHandler(t)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, types.CodeAuthenticationFailed, resp.Error)
			assert.Equal(t, "Access token not provided", resp.Message)
		})
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	gate := RequireAuth(&fakeAuthenticator{identities: map[string]types.Identity{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()

	gate(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, types.CodeAuthenticationFailed, decodeResponse(t, rec).Error)
}

func TestRequireAuthLockedAccount(t *testing.T) {
	gate := RequireAuth(&fakeAuthenticator{err: types.ErrAccountLocked()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()

	gate(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, types.CodeAccountLocked, decodeResponse(t, rec).Error)
}

func TestRequireAuthStorageFailure(t *testing.T) {
	// A database outage during the account reload is a server error,
	// not a credential failure.
	gate := RequireAuth(&fakeAuthenticator{err: errors.New("dial tcp 127.0.0.1:5432: connection refused")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	gate(okHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, types.CodeInternalError, resp.Error)
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	gate := RequireAuth(&fakeAuthenticator{identities: map[string]types.Identity{
		"good-token": {ID: "user-1", Username: "alice", Role: types.RoleStudent, Status: types.StatusActive},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "bearer good-token")
	rec := httptest.NewRecorder()

	gate(identityEcho(t)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestOptionalAuth(t *testing.T) {
	optional := OptionalAuth(&fakeAuthenticator{identities: map[string]types.Identity{
		"good-token": {ID: "user-1", Username: "alice", Role: types.RoleStudent},
	}})

	// No token: proceeds anonymously.
	req := httptest.NewRequest(http.MethodGet, "/notices", nil)
	rec := httptest.NewRecorder()
	optional(identityEcho(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", decodeResponse(t, rec).Message)

	// Bad token: also proceeds anonymously, never rejects.
	req = httptest.NewRequest(http.MethodGet, "/notices", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	optional(identityEcho(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", decodeResponse(t, rec).Message)

	// Good token: identity attached.
	req = httptest.NewRequest(http.MethodGet, "/notices", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec = httptest.NewRecorder()
	optional(identityEcho(t)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "anonymous", decodeResponse(t, rec).Message)
}

func TestRequireRoles(t *testing.T) {
	guard := RequireRoles(types.RoleAdmin, types.RoleTeacher)

	serve := func(identity *types.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		if identity != nil {
			req = req.WithContext(withIdentity(req.Context(), *identity))
		}
		rec := httptest.NewRecorder()
		guard(okHandler(t)).ServeHTTP(rec, req)
		return rec
	}

	// No identity: the gate never ran.
	rec := serve(nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not authenticated", decodeResponse(t, rec).Message)

	// Student outside the allow-set.
	rec = serve(&types.Identity{ID: "u1", Role: types.RoleStudent})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, types.CodeAuthorizationFailed, resp.Error)
	assert.Equal(t, "Insufficient permissions", resp.Message)

	// Teacher and admin both pass.
	assert.Equal(t, http.StatusOK, serve(&types.Identity{ID: "u2", Role: types.RoleTeacher}).Code)
	assert.Equal(t, http.StatusOK, serve(&types.Identity{ID: "u3", Role: types.RoleAdmin}).Code)
}
