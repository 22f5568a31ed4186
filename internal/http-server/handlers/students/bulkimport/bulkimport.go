package bulkimport

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

type StudentImporter interface {
	ImportStudents(ctx context.Context, rows []api.StudentImportRow) (*api.ImportResult, error)
}

type Request struct {
	Students []api.StudentImportRow `json:"students"`
}

type Response struct {
	response.Response
	api.ImportResult
}

func New(log *slog.Logger, importer StudentImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.students.bulkimport.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded", slog.Int("rows", len(req.Students)))

		res, err := importer.ImportStudents(r.Context(), req.Students)
		if err != nil {
			respond.Error(w, r, log, err, "failed to import students")
			return
		}

		log.Info("Students imported",
			slog.Int("imported", res.Imported),
			slog.Int("skipped", len(res.Skipped)),
		)

		render.JSON(w, r, Response{ImportResult: *res})
	}
}
