package delete

import (
	"attendance-service/internal/http-server/handlers/respond"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type StudentDeleter interface {
	DeleteStudent(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter StudentDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if err := deleter.DeleteStudent(r.Context(), id); err != nil {
			respond.Error(w, r, log, err, "failed to delete student")
			return
		}

		log.Info("Student deleted", slog.String("student_id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
