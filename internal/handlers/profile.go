package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/types"
)

// avatarMaxBytes caps avatar uploads at 2 MiB.
const avatarMaxBytes = 2 << 20

// ProfileHandler serves the authenticated account's own profile.
type ProfileHandler struct {
	authService   *services.AuthService
	exportService *services.ExportService
	log           *logrus.Logger
}

func NewProfileHandler(authService *services.AuthService, exportService *services.ExportService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{authService: authService, exportService: exportService, log: log}
}

// ProfileRouter registers profile routes. Every route requires the gate.
func ProfileRouter(r chi.Router, authService *services.AuthService, exportService *services.ExportService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewProfileHandler(authService, exportService, log)

	r.Use(gate)
	r.Get("/", handler.Get)
	r.Put("/", handler.Update)
	r.Put("/avatar", handler.UploadAvatar)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
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

type updateProfileRequest struct {
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), identity.ID, req.Email, req.AvatarURL)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user.Public(), "Profile updated")
}

// UploadAvatar accepts a multipart form with an "avatar" file part,
// stores it in object storage, and records the resulting key on the
// account.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}
	if !h.exportService.Enabled() {
		writeFail(w, http.StatusInternalServerError, types.CodeInternalError, "Object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatarMaxBytes)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Avatar file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key, err := h.exportService.StoreAvatar(r.Context(), identity.ID, file, header.Size, contentType)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), identity.ID, "", key)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user.Public(), "Avatar updated")
}
