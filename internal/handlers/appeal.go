package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/internal/store"
	"github.com/shuyan0723/study--student-mangement/types"
)

// AppealHandler provides HTTP handlers for grade appeals.
type AppealHandler struct {
	appealService  *services.AppealService
	studentService *services.StudentService
	log            *logrus.Logger
}

func NewAppealHandler(appealService *services.AppealService, studentService *services.StudentService, log *logrus.Logger) *AppealHandler {
	return &AppealHandler{appealService: appealService, studentService: studentService, log: log}
}

// AppealRouter registers appeal routes. Students file appeals; staff
// review them.
func AppealRouter(r chi.Router, appealService *services.AppealService, studentService *services.StudentService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewAppealHandler(appealService, studentService, log)

	r.Use(gate)
	r.Get("/", handler.List)
	r.With(RequireRoles(types.RoleStudent)).Post("/", handler.Submit)
	r.Route("/{appealID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Put("/review", handler.Review)
	})
}

type SubmitAppealRequest struct {
	GradeID string `json:"grade_id"`
	Reason  string `json:"reason"`
}

type ReviewAppealRequest struct {
	Status     string `json:"status"`
	ReviewNote string `json:"review_note"`
}

func (h *AppealHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, err.Error())
		return
	}

	// Students see only their own appeals.
	studentID := ""
	if identity.Role == types.RoleStudent {
		student, err := h.studentService.GetByUserID(r.Context(), identity.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeData(w, http.StatusOK, ListPage{Items: []types.Appeal{}, Page: page, Limit: limit, Total: 0}, "")
				return
			}
			writeError(w, h.log, err)
			return
		}
		studentID = student.ID
	}

	appeals, total, err := h.appealService.List(r.Context(), studentID, offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: appeals, Page: page, Limit: limit, Total: total}, "")
}

func (h *AppealHandler) Get(w http.ResponseWriter, r *http.Request) {
	appeal, err := h.appealService.Get(r.Context(), chi.URLParam(r, "appealID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, appeal, "")
}

func (h *AppealHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	var req SubmitAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if req.GradeID == "" || req.Reason == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "grade_id and reason are required")
		return
	}

	student, err := h.studentService.GetByUserID(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusForbidden, types.CodeAuthorizationFailed, "No student profile linked to this account")
			return
		}
		writeError(w, h.log, err)
		return
	}

	appeal, err := h.appealService.Submit(r.Context(), req.GradeID, student.ID, req.Reason)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, appeal, "Appeal submitted")
}

func (h *AppealHandler) Review(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	var req ReviewAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}

	appeal, err := h.appealService.Review(r.Context(), chi.URLParam(r, "appealID"), identity.ID, req.Status, req.ReviewNote)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, appeal, "Appeal reviewed")
}
