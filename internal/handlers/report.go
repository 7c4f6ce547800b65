package handlers

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/types"
)

// ReportHandler builds CSV exports and streams them back.
type ReportHandler struct {
	exportService *services.ExportService
	log           *logrus.Logger
}

func NewReportHandler(exportService *services.ExportService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{exportService: exportService, log: log}
}

// ReportRouter registers report routes behind the gate. Grade reports
// are available to staff, enrollment reports to admins only.
func ReportRouter(r chi.Router, exportService *services.ExportService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewReportHandler(exportService, log)

	r.Use(gate)
	r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Get("/grades", handler.Grades)
	r.With(RequireRoles(types.RoleAdmin)).Get("/enrollment", handler.Enrollment)
	r.With(RequireRoles(types.RoleAdmin, types.RoleTeacher)).Get("/download/*", handler.Download)
}

func (h *ReportHandler) Grades(w http.ResponseWriter, r *http.Request) {
	if !h.exportService.Enabled() {
		writeFail(w, http.StatusInternalServerError, types.CodeInternalError, "Object storage is not configured")
		return
	}
	key, err := h.exportService.GradeReport(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"key": key}, "Grade report generated")
}

func (h *ReportHandler) Enrollment(w http.ResponseWriter, r *http.Request) {
	if !h.exportService.Enabled() {
		writeFail(w, http.StatusInternalServerError, types.CodeInternalError, "Object storage is not configured")
		return
	}
	key, err := h.exportService.EnrollmentReport(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"key": key}, "Enrollment report generated")
}

// Download streams a previously generated report. Keys are confined to
// the reports/ prefix so the endpoint cannot read arbitrary objects.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !strings.HasPrefix(key, "reports/") || strings.Contains(key, "..") {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid report key")
		return
	}

	reader, err := h.exportService.Open(r.Context(), key)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+path.Base(key)+"\"")
	if _, err := io.Copy(w, reader); err != nil {
		h.log.WithError(err).WithField("key", key).Error("failed to stream report")
	}
}
