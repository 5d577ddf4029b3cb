package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"task-tracker/auth"
)

type contextKey string

const (
	userKey    contextKey = "userID"
	sessionKey contextKey = "sessionID"
)

// WithUser stores the authenticated user and session on ctx.
func WithUser(ctx context.Context, userID uuid.UUID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, userID)
	return context.WithValue(ctx, sessionKey, sessionID)
}

// UserID returns the authenticated user's id.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

// RequireAuth rejects requests without a valid bearer token and puts the
// token's user on the request context.
func RequireAuth(tokens *auth.TokenManager, sessions auth.SessionStore, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing token")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			active, err := sessions.Active(r.Context(), claims.ID)
			if err != nil {
				log.Error().Err(err).Msg("session lookup failed")
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !active {
				writeError(w, http.StatusUnauthorized, "Session expired")
				return
			}

			userID, _ := claims.UserID()
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, claims.ID)))
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
