package daily

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/report"
	"attendance-service/pkg/response"
	"attendance-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type DailyReporter interface {
	DailyReport(ctx context.Context, date string) ([]report.SectionSummary, error)
}

type Response struct {
	response.Response
	Date     string                  `json:"date,omitempty"`
	Sections []report.SectionSummary `json:"sections"`
}

// New serves the per-section summary of one day, as JSON or, with
// ?format=csv, as a semicolon separated file.
func New(log *slog.Logger, reporter DailyReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.daily.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		date := r.URL.Query().Get("date")

		rows, err := reporter.DailyReport(r.Context(), date)
		if err != nil {
			respond.Error(w, r, log, err, "failed to build daily report")
			return
		}

		log.Info("Daily report built", slog.Int("sections", len(rows)))

		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="daily-report.csv"`)
			if err := report.WriteDailyCSV(w, rows); err != nil {
				log.Error("Failed to write csv", sl.Err(err))
			}
			return
		}

		render.JSON(w, r, Response{Date: date, Sections: rows})
	}
}
