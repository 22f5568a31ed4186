package analyze

import (
	"attendance-service/api"
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Analyzer interface {
	Analyze(ctx context.Context) (*api.AnalysisResponse, error)
}

type Response struct {
	response.Response
	api.AnalysisResponse
}

func New(log *slog.Logger, analyzer Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analysis.analyze.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		res, err := analyzer.Analyze(r.Context())
		if err != nil {
			respond.Error(w, r, log, err, "failed to analyse attendance")
			return
		}

		log.Info("Analysis returned", slog.Bool("configured", res.Configured))

		render.JSON(w, r, Response{AnalysisResponse: *res})
	}
}
