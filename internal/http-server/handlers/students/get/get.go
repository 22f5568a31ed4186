package get

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/models"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StudentLister interface {
	ListStudents(ctx context.Context, sess session.Session, grade, section string) ([]models.Student, error)
}

type Response struct {
	response.Response
	Students []models.Student `json:"students"`
}

func New(log *slog.Logger, lister StudentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		grade := r.URL.Query().Get("grade")
		section := r.URL.Query().Get("section")
		sess, _ := session.FromContext(r.Context())

		students, err := lister.ListStudents(r.Context(), sess, grade, section)
		if err != nil {
			respond.Error(w, r, log, err, "failed to list students")
			return
		}

		log.Info("Students retrieved", slog.Int("count", len(students)))

		render.JSON(w, r, Response{Students: students})
	}
}
