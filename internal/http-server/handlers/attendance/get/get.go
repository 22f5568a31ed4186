package get

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

type DayMapGetter interface {
	DayMap(ctx context.Context, sess session.Session, grade, section, date string) (*api.DayMapResponse, error)
}

type Response struct {
	response.Response
	api.DayMapResponse
}

// New returns the stored register of one section for one day. Teachers may
// omit grade and section to get their own class; a blank date is today.
func New(log *slog.Logger, getter DayMapGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		sess, _ := session.FromContext(r.Context())

		day, err := getter.DayMap(r.Context(), sess, q.Get("grade"), q.Get("section"), q.Get("date"))
		if err != nil {
			respond.Error(w, r, log, err, "failed to get attendance")
			return
		}

		log.Info("Attendance retrieved",
			slog.String("section", day.Section),
			slog.String("date", day.Date),
			slog.Int("marked", len(day.Marks)),
		)

		render.JSON(w, r, Response{DayMapResponse: *day})
	}
}
