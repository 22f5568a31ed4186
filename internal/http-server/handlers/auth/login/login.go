package login

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

type Authenticator interface {
	Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error)
}

type Response struct {
	response.Response
	api.LoginResponse
}

func New(log *slog.Logger, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.LoginRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		// the secret is never logged
		log.Info("Login attempt", slog.String("login", req.Login))

		res, err := auth.Login(r.Context(), &req)
		if err != nil {
			respond.Error(w, r, log, err, "failed to sign in")
			return
		}

		log.Info("Signed in", slog.String("account_id", res.Account.ID))

		render.JSON(w, r, Response{LoginResponse: *res})
	}
}
