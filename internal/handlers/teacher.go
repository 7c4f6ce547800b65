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

// TeacherHandler provides HTTP handlers for teacher profiles.
type TeacherHandler struct {
	teacherService *services.TeacherService
	log            *logrus.Logger
}

func NewTeacherHandler(teacherService *services.TeacherService, log *logrus.Logger) *TeacherHandler {
	return &TeacherHandler{teacherService: teacherService, log: log}
}

// TeacherRouter registers teacher routes. Admin-only throughout.
func TeacherRouter(r chi.Router, teacherService *services.TeacherService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewTeacherHandler(teacherService, log)

	r.Use(gate, RequireRoles(types.RoleAdmin))
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{teacherID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, err.Error())
		return
	}

	teachers, total, err := h.teacherService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: teachers, Page: page, Limit: limit, Total: total}, "")
}

func (h *TeacherHandler) Get(w http.ResponseWriter, r *http.Request) {
	teacher, err := h.teacherService.Get(r.Context(), chi.URLParam(r, "teacherID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, teacher, "")
}

func (h *TeacherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var teacher types.Teacher
	if err := json.NewDecoder(r.Body).Decode(&teacher); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if strings.TrimSpace(teacher.TeacherNumber) == "" || strings.TrimSpace(teacher.Name) == "" || teacher.UserID == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "user_id, teacher_id, and name are required")
		return
	}

	created, err := h.teacherService.Create(r.Context(), teacher)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, created, "Teacher created")
}

func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	var teacher types.Teacher
	if err := json.NewDecoder(r.Body).Decode(&teacher); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	teacher.ID = chi.URLParam(r, "teacherID")

	updated, err := h.teacherService.Update(r.Context(), teacher)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Teacher updated")
}

func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.teacherService.Delete(r.Context(), chi.URLParam(r, "teacherID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Teacher deleted")
}
