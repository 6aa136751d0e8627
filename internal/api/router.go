package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskify/taskify-api/internal/api/middleware"
	"github.com/taskify/taskify-api/internal/api/shared"
	"github.com/taskify/taskify-api/internal/app"
	"github.com/taskify/taskify-api/internal/service/auth"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig holds what NewRouter needs to build the API.
type RouterConfig struct {
	Services app.Services
	Tokens   auth.JWTService
	DB       Pinger
	Logger   *slog.Logger

	// RequestTimeout bounds each request. Zero disables the limit.
	RequestTimeout time.Duration
}

// NewRouter returns the HTTP handler of the API. Everything except
// registration, login and the health check requires a Bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	authHandler := NewAuthHandler(cfg.Services.Users)
	projects := NewProjectHandler(cfg.Services.Projects)
	boards := NewBoardHandler(cfg.Services.Boards, cfg.Services.Columns)
	columns := NewColumnHandler(cfg.Services.Columns)
	tasks := NewTaskHandler(cfg.Services.Tasks)
	labels := NewLabelHandler(cfg.Services.Labels)
	notifications := NewNotificationHandler(cfg.Services.Notifications)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Tokens)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewTraceMiddleware(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", health(cfg.DB))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health(cfg.DB))
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projects.List)
				r.Post("/", projects.Create)
				r.Get("/{id}", projects.Get)
				r.Put("/{id}", projects.Update)
				r.Delete("/{id}", projects.Delete)
				r.Get("/{projectId}/boards", boards.ListByProject)
				r.Post("/{projectId}/boards", boards.Create)
			})

			r.Route("/boards", func(r chi.Router) {
				r.Get("/{id}", boards.View)
				r.Put("/{id}", boards.Rename)
				r.Delete("/{id}", boards.Delete)
				r.Get("/{boardId}/columns", boards.ListColumns)
				r.Post("/{boardId}/columns", boards.CreateColumn)
				r.Put("/{boardId}/columns/reorder", boards.ReorderColumns)
			})

			r.Put("/columns/{id}", columns.Update)
			r.Delete("/columns/{id}", columns.Delete)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", tasks.List)
				r.Post("/", tasks.Create)
				r.Get("/{id}", tasks.Get)
				r.Put("/{id}", tasks.Update)
				r.Delete("/{id}", tasks.Delete)
				r.Patch("/{id}/move", tasks.Move)
			})

			r.Route("/labels", func(r chi.Router) {
				r.Get("/", labels.List)
				r.Post("/", labels.Create)
				r.Put("/{id}", labels.Update)
				r.Delete("/{id}", labels.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifications.List)
				r.Patch("/read-all", notifications.MarkAllRead)
				r.Patch("/{id}/read", notifications.MarkRead)
				r.Delete("/{id}", notifications.Delete)
			})
		})
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logFailure(r, "health check failed", err)
				resp = HealthResponse{Status: "degraded", Database: "unreachable"}
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
	}
}
