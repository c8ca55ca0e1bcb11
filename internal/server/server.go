// Package server exposes the application services over HTTP. Handlers stay
// thin: decode the request, call the service with the authenticated
// principal, translate the typed service error to a status code.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/taskwell/taskwell/internal/audit"
	"github.com/taskwell/taskwell/internal/auth"
	"github.com/taskwell/taskwell/internal/logger"
	"github.com/taskwell/taskwell/internal/notify"
	"github.com/taskwell/taskwell/internal/service"
	"github.com/taskwell/taskwell/internal/store"
)

// Config carries server-level settings.
type Config struct {
	// JWTSecret signs and verifies bearer tokens. Required.
	JWTSecret string

	// AllowedOrigins configures CORS. Empty disables cross-origin access.
	AllowedOrigins []string
}

// Server wires the services behind the HTTP API.
type Server struct {
	cfg   Config
	store *store.Store

	tasks *service.TaskService
	users *service.UserService
	orgs  *service.OrganizationService
	feed  *notify.Feed
}

// NewServer creates a server over the given store. The notification feed is
// fixed at construction.
func NewServer(cfg Config, s *store.Store, feed *notify.Feed) *Server {
	engine := auth.NewEngine()
	recorder := audit.NewStoreRecorder(s.Audit)

	return &Server{
		cfg:   cfg,
		store: s,
		tasks: service.NewTaskService(s, engine, recorder),
		users: service.NewUserService(s, engine, recorder),
		orgs:  service.NewOrganizationService(s, engine, recorder),
		feed:  feed,
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Requests(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}

	// Health check endpoint for load balancer
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Get("/{taskID}", s.getTask)
			r.Patch("/{taskID}", s.updateTask)
			r.Delete("/{taskID}", s.deleteTask)
			r.Get("/{taskID}/transitions", s.taskTransitions)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.inviteUser)
			r.Get("/{userID}", s.getUser)
			r.Patch("/{userID}", s.updateUser)
			r.Delete("/{userID}", s.deleteUser)
			r.Post("/{userID}/role", s.changeUserRole)
			r.Post("/{userID}/toggle-status", s.toggleUserStatus)
		})

		r.Route("/organization", func(r chi.Router) {
			r.Get("/", s.organizationDetails)
			r.Patch("/", s.renameOrganization)
			r.Delete("/", s.deleteOrganization)
			r.Post("/transfer-ownership", s.transferOwnership)
			r.Get("/audit", s.auditLog)
		})

		r.Get("/notifications", s.notifications)
		r.Get("/workflow/statuses", s.workflowStatuses)
	})

	return r
}
