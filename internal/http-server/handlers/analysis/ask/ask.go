package ask

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

type Asker interface {
	Ask(ctx context.Context, req *api.AskRequest) (*api.AnalysisResponse, error)
}

type Response struct {
	response.Response
	api.AnalysisResponse
}

func New(log *slog.Logger, asker Asker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.analysis.ask.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.AskRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded", slog.Int("history", len(req.History)))

		res, err := asker.Ask(r.Context(), &req)
		if err != nil {
			respond.Error(w, r, log, err, "failed to answer question")
			return
		}

		render.JSON(w, r, Response{AnalysisResponse: *res})
	}
}
