package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/user"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/handlers"
	httpmw "github.com/Charbel-5/moondev-coding-challenge/internal/http/middleware"
)

type RouterDependencies struct {
	SubmissionHandler *handlers.SubmissionHandler
	StorageHandler    *handlers.StorageHandler
	EventsHandler     *handlers.EventsHandler
	AuthMiddleware    *httpmw.AuthMiddleware
	Logger            *slog.Logger
	RequestTimeout    time.Duration
	AllowedOrigins    []string
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(httpmw.Logging(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(deps.AuthMiddleware.Authenticate)

		// The event stream lives outside the request timeout: it stays
		// open until the client goes away.
		api.Get("/events", deps.EventsHandler.Stream)

		api.Group(func(timed chi.Router) {
			timed.Use(chimw.Timeout(deps.RequestTimeout))

			timed.With(httpmw.RequireRole(user.RoleApplicant)).Post("/submissions", deps.SubmissionHandler.Submit)
			timed.With(httpmw.RequireRole(user.RoleApplicant)).Get("/submissions/me", deps.SubmissionHandler.GetMine)
			timed.With(httpmw.RequireRole(user.RoleReviewer)).Get("/submissions", deps.SubmissionHandler.List)
			timed.Get("/submissions/{id}", deps.SubmissionHandler.Get)
			timed.Patch("/submissions/{id}", deps.SubmissionHandler.Update)

			timed.With(httpmw.RequireRole(user.RoleApplicant)).Post("/artifacts/{kind}", deps.StorageHandler.Upload)
			timed.With(httpmw.RequireRole(user.RoleApplicant)).Get("/artifacts/{kind}", deps.StorageHandler.ListUploads)
			timed.Get("/storage", deps.StorageHandler.Storage)
		})
	})

	return r
}
