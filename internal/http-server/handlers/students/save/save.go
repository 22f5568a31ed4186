package save

import (
	"attendance-service/api"
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/models"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StudentSaver interface {
	SaveStudent(ctx context.Context, req *api.StudentRequest) (*models.Student, error)
}

type Response struct {
	response.Response
	Student models.Student `json:"student"`
}

func New(log *slog.Logger, saver StudentSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.save.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.StudentRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded", slog.String("school_id", req.SchoolID))

		student, err := saver.SaveStudent(r.Context(), &req)
		if err != nil {
			respond.Error(w, r, log, err, "failed to save student")
			return
		}

		log.Info("Student saved", slog.String("student_id", student.ID))

		if req.ID == "" {
			w.WriteHeader(http.StatusCreated)
		}
		render.JSON(w, r, Response{Student: *student})
	}
}
