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

// StudentHandler provides HTTP handlers for student profiles.
type StudentHandler struct {
	studentService *services.StudentService
	log            *logrus.Logger
}

func NewStudentHandler(studentService *services.StudentService, log *logrus.Logger) *StudentHandler {
	return &StudentHandler{studentService: studentService, log: log}
}

// StudentRouter registers student routes. The gate wraps every route;
// listing is staff-only and writes are admin-only.
func StudentRouter(r chi.Router, studentService *services.StudentService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewStudentHandler(studentService, log)

	r.Use(gate)
	r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Get("/", handler.List)
	r.With(RequireRoles(types.RoleAdmin)).Post("/", handler.Create)
	r.Route("/{studentID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(RequireRoles(types.RoleAdmin)).Put("/", handler.Update)
		r.With(RequireRoles(types.RoleAdmin)).Delete("/", handler.Delete)
	})
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, err.Error())
		return
	}

	filter := types.StudentFilter{
		College: r.URL.Query().Get("college"),
		Major:   r.URL.Query().Get("major"),
		Status:  r.URL.Query().Get("status"),
	}
	students, total, err := h.studentService.List(r.Context(), filter, offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: students, Page: page, Limit: limit, Total: total}, "")
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentService.Get(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, student, "")
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var student types.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if strings.TrimSpace(student.StudentNumber) == "" || strings.TrimSpace(student.Name) == "" || student.UserID == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "user_id, student_id, and name are required")
		return
	}

	created, err := h.studentService.Create(r.Context(), student)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, created, "Student created")
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var student types.Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	student.ID = chi.URLParam(r, "studentID")

	updated, err := h.studentService.Update(r.Context(), student)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Student updated")
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.studentService.Delete(r.Context(), chi.URLParam(r, "studentID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Student deleted")
}
