package save

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

type AccountSaver interface {
	SaveAccount(ctx context.Context, sess session.Session, req *api.AccountRequest) (*api.Account, error)
}

type Response struct {
	response.Response
	Account api.Account `json:"account"`
}

// New creates an account when the body has no known id and edits it otherwise.
func New(log *slog.Logger, saver AccountSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.save.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req api.AccountRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.DecodeFailed(w, r, log, err)
			return
		}

		log.Info("Request body decoded",
			slog.String("id", req.ID),
			slog.String("login", req.Login),
			slog.String("role", string(req.Role)),
		)

		sess, _ := session.FromContext(r.Context())

		account, err := saver.SaveAccount(r.Context(), sess, &req)
		if err != nil {
			respond.Error(w, r, log, err, "failed to save account")
			return
		}

		log.Info("Account saved", slog.String("account_id", account.ID))

		if req.ID == "" {
			w.WriteHeader(http.StatusCreated)
		}
		render.JSON(w, r, Response{Account: *account})
	}
}
