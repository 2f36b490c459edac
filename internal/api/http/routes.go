package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-selfcheck/internal/auth"
	authmw "github.com/mind-engage/mindengage-selfcheck/internal/auth/middleware"
	"github.com/mind-engage/mindengage-selfcheck/internal/metrics"
	"github.com/mind-engage/mindengage-selfcheck/internal/rbac"
	"github.com/mind-engage/mindengage-selfcheck/internal/storage"
	"github.com/mind-engage/mindengage-selfcheck/internal/store"
	syncx "github.com/mind-engage/mindengage-selfcheck/internal/sync"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Store   store.Store
	Blobs   storage.BlobStore
	Auth    *authmw.AuthService
	Creds   authmw.Credentials
	Google  *auth.GoogleOAuth // optional
	Events  *syncx.EventRepo  // optional
	Metrics *metrics.Metrics  // optional
	Log     *slog.Logger

	CORSOrigins     []string
	EnableLocalAuth bool
	SecureCookies   bool
	Timeout         time.Duration
	Ready           func(ctx context.Context) error // optional readiness probe
}

func NewRouter(d Deps) chi.Router {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(d.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				d.Log.Warn("not ready", "err", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", d.Metrics.Handler())

	if d.EnableLocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Creds))
	}
	r.Post("/auth/guest", auth.GuestLoginHandler(d.Auth, d.SecureCookies))
	if d.Google != nil {
		r.Get("/auth/google/login", d.Google.LoginHandler())
		r.Get("/auth/google/callback", d.Google.CallbackHandler(d.Auth))
	}

	if d.Blobs != nil {
		r.Route("/assets", func(ar chi.Router) { MountAssets(ar, d) })
	}

	// Protected API (JWT -> subject/role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("assessment:view")).Get("/assessments", ListAssessmentsHandler(d))
		pr.With(rbac.Require("assessment:view")).Get("/assessments/{id}", GetAssessmentHandler(d))
		pr.With(rbac.Require("assessment:edit")).Put("/assessments/{id}", PutAssessmentHandler(d))
		pr.With(rbac.Require("assessment:score")).Post("/assessments/{id}/score", ScoreHandler(d))

		pr.With(rbac.Require("attempt:create")).Post("/attempts", CreateAttemptHandler(d))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/attempts", ListAttemptsHandler(d))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/attempts/{attemptID}", GetAttemptHandler(d))
		pr.With(rbac.Require("attempt:save")).Post("/attempts/{attemptID}/responses", SaveResponsesHandler(d))
		pr.With(rbac.Require("attempt:submit")).Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(d))

		if d.Events != nil {
			pr.With(rbac.Require("event:read")).Get("/events", EventsHandler(d))
		}
	})
	return r
}
