package commit

import (
	"attendance-service/api"
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Committer interface {
	Commit(ctx context.Context, sess session.Session, req *api.CommitRequest) (*api.CommitResponse, error)
}

type Response struct {
	response.Response
	api.CommitResponse
}

func New(log *slog.Logger, committer Committer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.commit.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.CommitRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded",
			slog.String("grade", req.Grade),
			slog.String("section", req.Section),
			slog.String("date", req.Date),
			slog.Int("marks", len(req.Marks)),
		)

		sess, _ := session.FromContext(r.Context())

		res, err := committer.Commit(r.Context(), sess, &req)
		if err != nil {
			respond.Error(w, r, log, err, "failed to save attendance")
			return
		}

		log.Info("Attendance saved",
			slog.String("section", res.Section),
			slog.Int("written", res.Written),
		)

		render.JSON(w, r, Response{CommitResponse: *res})
	}
}
