package overview

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/report"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type OverviewGetter interface {
	Overview(ctx context.Context, date string) (*report.Overview, error)
}

type Response struct {
	response.Response
	Overview report.Overview `json:"overview"`
}

func New(log *slog.Logger, getter OverviewGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.overview.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		o, err := getter.Overview(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			respond.Error(w, r, log, err, "failed to build overview")
			return
		}

		log.Info("Overview built", slog.String("date", o.Date))

		render.JSON(w, r, Response{Overview: *o})
	}
}
