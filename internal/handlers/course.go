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

// CourseHandler provides HTTP handlers for courses.
type CourseHandler struct {
	courseService *services.CourseService
	log           *logrus.Logger
}

func NewCourseHandler(courseService *services.CourseService, log *logrus.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, log: log}
}

// CourseRouter registers course routes. Reads for any authenticated
// user; creation for staff, update/delete for admins.
func CourseRouter(r chi.Router, courseService *services.CourseService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewCourseHandler(courseService, log)

	r.Use(gate)
	r.Get("/", handler.List)
	r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Post("/", handler.Create)
	r.Route("/{courseID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(RequireRoles(types.RoleAdmin)).Put("/", handler.Update)
		r.With(RequireRoles(types.RoleAdmin)).Delete("/", handler.Delete)
	})
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, err.Error())
		return
	}

	courses, total, err := h.courseService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: courses, Page: page, Limit: limit, Total: total}, "")
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.Get(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, course, "")
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var course types.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	if strings.TrimSpace(course.Code) == "" || strings.TrimSpace(course.Name) == "" {
		writeFail(w, http.StatusBadRequest, types.CodeMissingFields, "code and name are required")
		return
	}

	created, err := h.courseService.Create(r.Context(), course)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, created, "Course created")
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var course types.Course
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	course.ID = chi.URLParam(r, "courseID")

	updated, err := h.courseService.Update(r.Context(), course)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Course updated")
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.courseService.Delete(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Course deleted")
}
