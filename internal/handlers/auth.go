package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/types"
)

// AuthHandler provides the credential endpoints: login, refresh,
// logout, register, and password management.
type AuthHandler struct {
	authService *services.AuthService
	log         *logrus.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, log *logrus.Logger) {
	handler := NewAuthHandler(authService, log)
	gate := RequireAuth(authService, log)
	optional := OptionalAuth(authService)

	r.Post("/login", handler.Login)
	r.Post("/refresh", handler.Refresh)
	r.Post("/refresh-token", handler.Refresh)
	r.With(optional).Post("/logout", handler.Logout)
	r.Post("/register", handler.Register)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.With(gate).Put("/reset-password", handler.ResetPassword)
	r.With(gate).Get("/me", handler.Me)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Username string `json:"username"`
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "Username and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, result, "Login successful")
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Refresh token is required")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, result, "Tokens refreshed successfully")
}

// Logout acknowledges the request. Tokens are stateless; server-side
// invalidation plugs into the issuer's revocation hook when it lands.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logout successful")
}

// Register creates a new account and returns a token pair.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "Username and password are required")
		return
	}

	result, err := h.authService.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, result, "Registration successful")
}

// ResetPassword changes the caller's password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "Old and new passwords are required")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), identity.ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successfully")
}

// ForgotPassword validates the account and queues reset delivery.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "Username is required")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Username); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset email has been sent")
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	user, err := h.authService.GetUser(r.Context(), identity.ID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user.Public(), "")
}
