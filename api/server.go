/*
server.go - HTTP server setup and routing

PURPOSE:
  Configures the chi router, middleware stack, and route registration
  for the attendance engine's REST API.

MIDDLEWARE STACK (applied in order):
  1. RequestID  - Tags each request for log correlation
  2. RealIP     - Resolves the client IP behind proxies
  3. Logger     - Structured request logging via zerolog
  4. Recoverer  - Converts panics into 500 responses
  5. CORS       - Permissive cross-origin policy for local frontends

SEE ALSO:
  - handlers.go: The handlers wired up here
  - cmd/server/main.go: Entry point that constructs and runs the server
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter builds the API router with all routes registered.
func NewRouter(h *Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})

		r.Route("/clock", func(r chi.Router) {
			r.Post("/{employeeID}", h.Clock)
			r.Get("/{employeeID}", h.ClockStatus)
		})

		r.Get("/records", h.ListTimeRecords)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Post("/generate", h.GenerateShifts)
		})

		r.Get("/payroll", h.Payroll)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/attendance", h.AttendanceReport)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/weekly", h.WeeklyStats)
		})

		r.Route("/wage-rules", func(r chi.Router) {
			r.Get("/", h.ListWageRules)
			r.Post("/", h.SaveWageRule)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
