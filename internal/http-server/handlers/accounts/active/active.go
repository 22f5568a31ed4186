package active

import (
	"attendance-service/api"
	"attendance-service/internal/http-server/handlers/respond"
	"attendance-service/internal/session"
	"attendance-service/pkg/response"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ActiveToggler interface {
	ToggleAccountActive(ctx context.Context, sess session.Session, id string) (*api.Account, error)
}

type Response struct {
	response.Response
	Account api.Account `json:"account"`
}

func New(log *slog.Logger, toggler ActiveToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.active.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		sess, _ := session.FromContext(r.Context())

		account, err := toggler.ToggleAccountActive(r.Context(), sess, id)
		if err != nil {
			respond.Error(w, r, log, err, "failed to change account status")
			return
		}

		log.Info("Account status changed",
			slog.String("account_id", account.ID),
			slog.Bool("active", account.Active),
		)

		render.JSON(w, r, Response{Account: *account})
	}
}
