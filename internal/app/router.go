package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/plumeblog/plume/internal/posts"
	"github.com/plumeblog/plume/internal/users"
	"github.com/plumeblog/plume/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	UsersHandler *users.Handler
	PostsHandler *posts.Handler
	JobsHandler  *jobs.Handler
}

// NewRouter constructs the chi.Router with Plume defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The static /users/posts route coexists with /users/{id}; chi
	// prefers the static segment.
	if params.PostsHandler != nil {
		params.PostsHandler.MountRoutes(r)
	}
	if params.UsersHandler != nil {
		params.UsersHandler.MountRoutes(r)
	}

	if params.JobsHandler != nil {
		r.Route("/internal/jobs", func(r chi.Router) {
			params.JobsHandler.MountRoutes(r)
		})
	}

	return r
}
