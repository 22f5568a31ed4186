package get

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

type AccountLister interface {
	ListAccounts(ctx context.Context) ([]api.Account, error)
}

type Response struct {
	response.Response
	Accounts []api.Account `json:"accounts"`
}

func New(log *slog.Logger, lister AccountLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accounts.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		accounts, err := lister.ListAccounts(r.Context())
		if err != nil {
			respond.Error(w, r, log, err, "failed to list accounts")
			return
		}

		log.Info("Accounts retrieved", slog.Int("count", len(accounts)))

		render.JSON(w, r, Response{Accounts: accounts})
	}
}
