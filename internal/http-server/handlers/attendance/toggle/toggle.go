package toggle

import (
	"attendance-service/api"
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/pkg/response"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Toggler interface {
	Toggle(req *api.ToggleRequest) (*api.ToggleResponse, error)
}

type Response struct {
	response.Response
	api.ToggleResponse
}

// New applies one click to a draft register and returns the new draft.
func New(log *slog.Logger, toggler Toggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.toggle.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.ToggleRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		res, err := toggler.Toggle(&req)
		if err != nil {
			respond.Error(w, r, log, err, "failed to toggle attendance")
			return
		}

		log.Debug("Attendance toggled",
			slog.String("student_id", req.StudentID),
			slog.String("status", string(req.Status)),
		)

		render.JSON(w, r, Response{ToggleResponse: *res})
	}
}
