package monthly

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/report"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type MonthlyReporter interface {
	MonthlyReport(ctx context.Context, sess session.Session, grade, section, month string) (*report.Matrix, error)
}

type Response struct {
	response.Response
	Matrix report.Matrix `json:"matrix"`
}

func New(log *slog.Logger, reporter MonthlyReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.monthly.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		sess, _ := session.FromContext(r.Context())

		m, err := reporter.MonthlyReport(r.Context(), sess, q.Get("grade"), q.Get("section"), q.Get("month"))
		if err != nil {
			respond.Error(w, r, log, err, "failed to build monthly report")
			return
		}

		log.Info("Monthly report built",
			slog.String("section", m.Section),
			slog.String("month", m.Month),
			slog.Int("students", len(m.Students)),
		)

		if q.Get("format") == "csv" {
			filename := fmt.Sprintf("attendance-%s-%s.csv", m.Section, m.Month)
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
			if err := report.WriteMonthlyCSV(w, *m); err != nil {
				log.Error("Failed to write csv", sl.Err(err))
			}
			return
		}

		render.JSON(w, r, Response{Matrix: *m})
	}
}
