package risk

import (
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/risk"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type CriticalLister interface {
	CriticalStudents(ctx context.Context, threshold, limit int) ([]risk.Entry, error)
}

type Response struct {
	response.Response
	Students []risk.Entry `json:"students"`
}

// intParam reads a non-negative integer query parameter, or def when absent.
func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

func New(log *slog.Logger, lister CriticalLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.risk.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		threshold, ok := intParam(r, "threshold", 0)
		if !ok {
			log.Error("invalid threshold")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "threshold must be a non-negative integer"))
			return
		}

		limit, ok := intParam(r, "limit", -1)
		if !ok {
			log.Error("invalid limit")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "limit must be a non-negative integer"))
			return
		}

		entries, err := lister.CriticalStudents(r.Context(), threshold, limit)
		if err != nil {
			respond.Error(w, r, log, err, "failed to list critical students")
			return
		}

		log.Info("Critical students listed", slog.Int("count", len(entries)))

		render.JSON(w, r, Response{Students: entries})
	}
}
