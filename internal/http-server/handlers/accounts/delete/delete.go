package delete

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/session"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type AccountDeleter interface {
	DeleteAccount(ctx context.Context, sess session.Session, id string) error
}

func New(log *slog.Logger, deleter AccountDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		sess, _ := session.FromContext(r.Context())

		if err := deleter.DeleteAccount(r.Context(), sess, id); err != nil {
			respond.Error(w, r, log, err, "failed to delete account")
			return
		}

		log.Info("Account deleted", slog.String("account_id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
