package summary

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/summary"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Summarizer interface {
	Summary(ctx context.Context) ([]summary.Row, error)
}

type Response struct {
	response.Response
	Rows []summary.Row `json:"rows"`
}

func New(log *slog.Logger, summarizer Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analysis.summary.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		rows, err := summarizer.Summary(r.Context())
		if err != nil {
			respond.Error(w, r, log, err, "failed to build summary")
			return
		}

		log.Info("Summary built", slog.Int("rows", len(rows)))

		render.JSON(w, r, Response{Rows: rows})
	}
}
