package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/store"
	"github.com/shuyan0723/study--student-mangement/types"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func identityFromContext(ctx context.Context) (types.Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(types.Identity)
	return identity, ok
}

func withIdentity(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Response{Success: true, Data: data, Message: message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: true, Message: message})
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{Success: false, Error: code, Message: message})
}

// writeError maps service and store errors onto the taxonomy. Anything
// unrecognized is an internal error: logged in full, answered generically.
func writeError(w http.ResponseWriter, log *logrus.Logger, err error) {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		writeFail(w, apiErr.Status, apiErr.Code, apiErr.Message)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeFail(w, http.StatusNotFound, types.CodeNotFound, "Resource not found")
		return
	}
	if errors.Is(err, store.ErrDuplicate) {
		writeFail(w, http.StatusBadRequest, types.CodeDuplicateEntry, "Duplicate entry")
		return
	}
	if log != nil {
		log.WithError(err).Error("request failed")
	}
	writeFail(w, http.StatusInternalServerError, types.CodeInternalError, "Internal server error")
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit, (page - 1) * limit, nil
}

// ListPage is the standard paginated list payload.
type ListPage struct {
	Items any `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
