package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/types"
)

// Authenticator resolves a bearer access token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (types.Identity, error)
}

// RequireAuth is the gate: it extracts and verifies the bearer token,
// loads the account, and attaches the identity to the request context.
// Any failure rejects the request before it reaches a handler. Token
// failures answer 401; a persistence failure during the account reload
// is a server error, not a credential one.
func RequireAuth(authenticator Authenticator, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "Access token not provided")
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), tokenString)
			if err != nil {
				writeError(w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth performs the same steps as RequireAuth but proceeds
// anonymously on any failure. For endpoints whose behavior depends on
// the role without requiring one.
func OptionalAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := authenticator.Authenticate(r.Context(), tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// RequireRoles is the guard: the identity attached by RequireAuth must
// hold one of the allowed roles. A missing identity means the gate never
// ran, which is a wiring error surfaced as an authentication failure.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFromContext(r.Context())
			if !ok {
				writeFail(w, http.StatusUnauthorized, types.CodeAuthenticationFailed, "User not authenticated")
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				writeFail(w, http.StatusForbidden, types.CodeAuthorizationFailed, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs each request with structured fields.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   recorder.status,
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}).Info("request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
