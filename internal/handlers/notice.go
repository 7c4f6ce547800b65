package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/types"
)

// NoticeHandler provides HTTP handlers for notices.
type NoticeHandler struct {
	noticeService *services.NoticeService
	log           *logrus.Logger
}

func NewNoticeHandler(noticeService *services.NoticeService, log *logrus.Logger) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService, log: log}
}

// NoticeRouter registers notice routes. Listing uses the optional gate:
// anonymous callers see only notices addressed to everyone, while an
// authenticated role also sees its own audience. Writes are admin-only.
func NoticeRouter(r chi.Router, noticeService *services.NoticeService, gate, optional func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewNoticeHandler(noticeService, log)

	r.With(optional).Get("/", handler.List)
	r.With(gate, RequireRoles(types.RoleAdmin)).Post("/", handler.Publish)
	r.Route("/{noticeID}", func(r chi.Router) {
		r.With(gate).Get("/", handler.Get)
		r.With(gate, RequireRoles(types.RoleAdmin)).Put("/", handler.Update)
		r.With(gate, RequireRoles(types.RoleAdmin)).Delete("/", handler.Delete)
	})
}

func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, err.Error())
		return
	}

	audience := ""
	if identity, ok := identityFromContext(r.Context()); ok {
		audience = identity.Role
	}

	notices, total, err := h.noticeService.List(r.Context(), audience, offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: notices, Page: page, Limit: limit, Total: total}, "")
}

func (h *NoticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	notice, err := h.noticeService.Get(r.Context(), chi.URLParam(r, "noticeID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, notice, "")
}

func (h *NoticeHandler) Publish(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	var notice types.Notice
	if err := json.NewDecoder(r.Body).Decode(&notice); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	notice.AuthorID = identity.ID

	created, err := h.noticeService.Publish(r.Context(), notice)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, created, "Notice published")
}

func (h *NoticeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var notice types.Notice
	if err := json.NewDecoder(r.Body).Decode(&notice); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}
	notice.ID = chi.URLParam(r, "noticeID")

	updated, err := h.noticeService.Update(r.Context(), notice)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Notice updated")
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.noticeService.Delete(r.Context(), chi.URLParam(r, "noticeID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notice deleted")
}
