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

// GradeHandler provides HTTP handlers for grades.
type GradeHandler struct {
	gradeService   *services.GradeService
	studentService *services.StudentService
	log            *logrus.Logger
}

func NewGradeHandler(gradeService *services.GradeService, studentService *services.StudentService, log *logrus.Logger) *GradeHandler {
	return &GradeHandler{gradeService: gradeService, studentService: studentService, log: log}
}

// GradeRouter registers grade routes. Students see only their own
// grades; recording is staff-only, deletion admin-only.
func GradeRouter(r chi.Router, gradeService *services.GradeService, studentService *services.StudentService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewGradeHandler(gradeService, studentService, log)

	r.Use(gate)
	r.Get("/", handler.List)
	r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Post("/", handler.Create)
	r.Route("/{gradeID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Put("/", handler.Update)
		r.With(RequireRoles(types.RoleAdmin)).Delete("/", handler.Delete)
	})
}

func (h *GradeHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	if identity.Role == types.RoleStudent {
		student, err := h.studentService.GetByUserID(r.Context(), identity.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeData(w, http.StatusOK, []types.Grade{}, "")
				return
			}
			writeError(w, h.log, err)
			return
		}
		grades, err := h.gradeService.ListByStudent(r.Context(), student.ID)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		writeData(w, http.StatusOK, grades, "")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, err.Error())
		return
	}
	rows, total, err := h.gradeService.ListRows(r.Context(), offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: rows, Page: page, Limit: limit, Total: total}, "")
}

func (h *GradeHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	grade, err := h.gradeService.Get(r.Context(), chi.URLParam(r, "gradeID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	// Students may only read their own grades.
	if identity.Role == types.RoleStudent {
		student, err := h.studentService.GetByUserID(r.Context(), identity.ID)
		if err != nil || student.ID != grade.StudentID {
			writeFail(w, http.StatusForbidden, types.CodeAuthorizationFailed, "Insufficient permissions")
			return
		}
	}
	writeData(w, http.StatusOK, grade, "")
}

func (h *GradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var grade types.Grade
	if err := json.NewDecoder(r.Body).Decode(&grade); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if grade.StudentID == "" || grade.CourseID == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "student_id and course_id are required")
		return
	}

	created, err := h.gradeService.Create(r.Context(), grade)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, created, "Grade recorded")
}

func (h *GradeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var grade types.Grade
	if err := json.NewDecoder(r.Body).Decode(&grade); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	grade.ID = chi.URLParam(r, "gradeID")

	updated, err := h.gradeService.Update(r.Context(), grade)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Grade updated")
}

func (h *GradeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.gradeService.Delete(r.Context(), chi.URLParam(r, "gradeID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Grade deleted")
}
