package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shuyan0723/study--student-mangement/config"
	"github.com/shuyan0723/study--student-mangement/internal/auth"
	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/internal/store"
	"github.com/shuyan0723/study--student-mangement/types"
)

// memUserRepo is a map-backed services.UserRepository.
type memUserRepo struct {
	users map[string]types.User
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) UpdateLoginState(_ context.Context, user types.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored.LoginAttempts = user.LoginAttempts
	stored.Status = user.Status
	stored.LockedUntil = user.LockedUntil
	stored.LastLogin = user.LastLogin
	r.users[user.ID] = stored
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func newAuthTestRouter(t *testing.T) (*chi.Mux, *memUserRepo) {
	t.Helper()

	hasher := auth.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	repo := &memUserRepo{users: map[string]types.User{
		"user-alice": {
			ID:           "user-alice",
			Username:     "alice",
			Email:        "alice@example.com",
			Role:         types.RoleStudent,
			Status:       types.StatusActive,
			PasswordHash: hash,
		},
	}}

	issuer := auth.NewTokenIssuer(config.AuthConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, nil)

	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))

	authService := services.NewAuthService(
		repo, nil, nil,
		hasher, issuer, nil, log,
		5, 30*time.Minute,
	)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authService, log)
	})
	return router, repo
}

func postJSON(t *testing.T, router http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Message string               `json:"message"`
		Data    services.LoginResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Data.AccessToken)
	assert.NotEmpty(t, resp.Data.RefreshToken)
	assert.Equal(t, "alice", resp.Data.User.Username)
	assert.Equal(t, 900, resp.Data.ExpiresIn)
}

func TestLoginEndpointMissingFields(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, types.CodeMissingFields, resp.Error)
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	for _, req := range []LoginRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "whatever"},
	} {
		rec := postJSON(t, router, "/auth/login", req, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, types.CodeAuthenticationFailed, resp.Error)
		assert.Equal(t, "Invalid username or password", resp.Message)
	}
}

func TestLoginEndpointLockout(t *testing.T) {
	router, repo := newAuthTestRouter(t)

	for i := 0; i < 5; i++ {
		rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "wrong"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Equal(t, types.StatusLocked, repo.users["user-alice"].Status)

	rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "correct-horse"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, types.CodeAccountLocked, decodeResponse(t, rec).Error)
}

func TestRefreshEndpoint(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Data services.LoginResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))

	// Both route aliases accept the refresh token.
	for _, path := range []string{"/auth/refresh", "/auth/refresh-token"} {
		rec = postJSON(t, router, path, RefreshRequest{RefreshToken: login.Data.RefreshToken}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Tokens refreshed successfully", decodeResponse(t, rec).Message)
	}

	// An access token is not accepted as a refresh token.
	rec = postJSON(t, router, "/auth/refresh", RefreshRequest{RefreshToken: login.Data.AccessToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	// Logout answers uniformly with or without a token.
	rec := postJSON(t, router, "/auth/logout", struct{}{}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeResponse(t, rec).Message)

	rec = postJSON(t, router, "/auth/logout", struct{}{}, map[string]string{"Authorization": "Bearer bogus"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	router, repo := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Username: "bob",
		Password: "secret-pass",
		Email:    "bob@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, user := range repo.users {
		if user.Username == "bob" {
			found = true
			assert.Equal(t, types.RoleStudent, user.Role)
			assert.Equal(t, types.StatusActive, user.Status)
			assert.NotEqual(t, "secret-pass", user.PasswordHash)
		}
	}
	assert.True(t, found)

	// Duplicate username.
	rec = postJSON(t, router, "/auth/register", RegisterRequest{Username: "bob", Password: "secret-pass"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, types.CodeUsernameExists, decodeResponse(t, rec).Error)
}

func TestMeEndpoint(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Data services.LoginResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.AccessToken)
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	var me struct {
		Data types.PublicUser `json:"data"`
	}
	require.NoError(t, json.NewDecoder(out.Body).Decode(&me))
	assert.Equal(t, "alice", me.Data.Username)

	// Without a token the gate rejects.
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	out = httptest.NewRecorder()
	router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestResetPasswordEndpoint(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Data services.LoginResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	authHeader := map[string]string{"Authorization": "Bearer " + login.Data.AccessToken}

	put := func(body ResetPasswordRequest) *httptest.ResponseRecorder {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/auth/reset-password", bytes.NewReader(payload))
		for key, value := range authHeader {
			req.Header.Set(key, value)
		}
		out := httptest.NewRecorder()
		router.ServeHTTP(out, req)
		return out
	}

	out := put(ResetPasswordRequest{OldPassword: "wrong-old", NewPassword: "new-secret"})
	assert.Equal(t, http.StatusUnauthorized, out.Code)
	assert.Equal(t, "Old password is incorrect", decodeResponse(t, out).Message)

	out = put(ResetPasswordRequest{OldPassword: "correct-horse", NewPassword: "new-secret"})
	require.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "Password reset successfully", decodeResponse(t, out).Message)

	rec = postJSON(t, router, "/auth/login", LoginRequest{Username: "alice", Password: "new-secret"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForgotPasswordEndpoint(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	rec := postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Username: "alice"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset email has been sent", decodeResponse(t, rec).Message)

	rec = postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Username: "nobody"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
