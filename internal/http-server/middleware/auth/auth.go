// Package auth resolves the bearer session token into a session.Session.
package auth

import (
	"attendance-service/internal/models"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AccountLoader interface {
	Account(ctx context.Context, id string) (models.Account, error)
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), msg))
}

// New checks the token and reloads the account, so a deactivated or deleted
// account loses access before its token expires.
func New(log *slog.Logger, sessions *session.Manager, loader AccountLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.New"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := bearer(r)
			if token == "" {
				log.Warn("missing bearer token")
				unauthorized(w, r, "missing session token")
				return
			}

			claims, err := sessions.Parse(token)
			if err != nil {
				log.Warn("invalid session token", sl.Err(err))
				unauthorized(w, r, "invalid session token")
				return
			}

			account, err := loader.Account(r.Context(), claims.AccountID)
			if errors.Is(err, response.ErrNotFound) {
				log.Warn("session account no longer exists", slog.String("account_id", claims.AccountID))
				unauthorized(w, r, "invalid session token")
				return
			}
			if err != nil {
				log.Error("failed to load session account", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to load session"))
				return
			}

			if !account.Active {
				log.Warn("inactive account", slog.String("account_id", account.ID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(string(response.INACTIVE), "account is inactive"))
				return
			}

			ctx := session.WithSession(r.Context(), session.Session{Account: account})
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireAdmin rejects sessions that are not administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			unauthorized(w, r, "missing session")
			return
		}

		if !sess.IsAdmin() {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "administrator role required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
