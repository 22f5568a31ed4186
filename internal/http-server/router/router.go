package router

import (
	accountActive "attendance-service/internal/http-server/handlers/accounts/active"
	accountDelete "attendance-service/internal/http-server/handlers/accounts/delete"
	accountGet "attendance-service/internal/http-server/handlers/accounts/get"
	accountSave "attendance-service/internal/http-server/handlers/accounts/save"
	analysisAnalyze "attendance-service/internal/http-server/handlers/analysis/analyze"
	analysisAsk "attendance-service/internal/http-server/handlers/analysis/ask"
	analysisSummary "attendance-service/internal/http-server/handlers/analysis/summary"
	attendanceCommit "attendance-service/internal/http-server/handlers/attendance/commit"
	attendanceGet "attendance-service/internal/http-server/handlers/attendance/get"
	attendanceToggle "attendance-service/internal/http-server/handlers/attendance/toggle"
	"attendance-service/internal/http-server/handlers/auth/login"
	reportClass "attendance-service/internal/http-server/handlers/reports/class"
	reportDaily "attendance-service/internal/http-server/handlers/reports/daily"
	reportMonthly "attendance-service/internal/http-server/handlers/reports/monthly"
	reportOverview "attendance-service/internal/http-server/handlers/reports/overview"
	reportRisk "attendance-service/internal/http-server/handlers/reports/risk"
	studentImport "attendance-service/internal/http-server/handlers/students/bulkimport"
	studentDelete "attendance-service/internal/http-server/handlers/students/delete"
	studentGet "attendance-service/internal/http-server/handlers/students/get"
	studentSave "attendance-service/internal/http-server/handlers/students/save"
	"attendance-service/internal/http-server/middleware/auth"
	svc "attendance-service/internal/service"
	"attendance-service/internal/session"
	"attendance-service/pkg/middleware/mwLogger"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func New(log *slog.Logger, service *svc.Service, sessions *session.Manager) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Public
	router.Post("/auth/login", login.New(log, service))

	router.Group(func(r chi.Router) {
		r.Use(auth.New(log, sessions, service))

		// Students
		r.Get("/students", studentGet.New(log, service))

		// Attendance
		r.Get("/attendance/day", attendanceGet.New(log, service))
		r.Post("/attendance/toggle", attendanceToggle.New(log, service))
		r.Post("/attendance/commit", attendanceCommit.New(log, service))

		// Reports
		r.Get("/reports/monthly", reportMonthly.New(log, service))
		r.Get("/reports/class", reportClass.New(log, service))

		// Analysis
		r.Get("/analysis/summary", analysisSummary.New(log, service))
		r.Post("/analysis", analysisAnalyze.New(log, service))
		r.Post("/analysis/ask", analysisAsk.New(log, service))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			// Accounts
			r.Get("/accounts", accountGet.New(log, service))
			r.Post("/accounts", accountSave.New(log, service))
			r.Put("/accounts/{id}/active", accountActive.New(log, service))
			r.Delete("/accounts/{id}", accountDelete.New(log, service))

			// Students
			r.Post("/students", studentSave.New(log, service))
			r.Post("/students/import", studentImport.New(log, service))
			r.Delete("/students/{id}", studentDelete.New(log, service))

			// Reports
			r.Get("/reports/daily", reportDaily.New(log, service))
			r.Get("/reports/overview", reportOverview.New(log, service))
			r.Get("/reports/risk", reportRisk.New(log, service))
		})
	})

	return router
}
