package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/services"
	"github.com/shuyan0723/study--student-mangement/types"
)

// MessageHandler provides HTTP handlers for direct messages.
type MessageHandler struct {
	messageService *services.MessageService
	log            *logrus.Logger
}

func NewMessageHandler(messageService *services.MessageService, log *logrus.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, log: log}
}

// MessageRouter registers message routes for any authenticated user.
func MessageRouter(r chi.Router, messageService *services.MessageService, gate func(http.Handler) http.Handler, log *logrus.Logger) {
	handler := NewMessageHandler(messageService, log)

	r.Use(gate)
	r.Get("/", handler.List)
	r.Post("/", handler.Send)
	r.Put("/{messageID}/read", handler.MarkRead)
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
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

	messages, total, err := h.messageService.ListForUser(r.Context(), identity.ID, offset, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, ListPage{Items: messages, Page: page, Limit: limit, Total: total}, "")
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, types.CodeValidationError, "Invalid request body")
		return
	}

	message, err := h.messageService.Send(r.Context(), identity.ID, req.ReceiverID, req.Subject, req.Body)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, message, "Message sent")
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
		return
	}

	if err := h.messageService.MarkRead(r.Context(), chi.URLParam(r, "messageID"), identity.ID); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, "Message marked as read")
}
