package class

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/report"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ClassReporter interface {
	ClassToday(ctx context.Context, sess session.Session, grade, section, date string) (*report.ClassDay, error)
}

type Response struct {
	response.Response
	Class report.ClassDay `json:"class"`
}

func New(log *slog.Logger, reporter ClassReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.class.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		sess, _ := session.FromContext(r.Context())

		c, err := reporter.ClassToday(r.Context(), sess, q.Get("grade"), q.Get("section"), q.Get("date"))
		if err != nil {
			respond.Error(w, r, log, err, "failed to build class report")
			return
		}

		log.Info("Class report built", slog.String("section", c.Section))

		render.JSON(w, r, Response{Class: *c})
	}
}
