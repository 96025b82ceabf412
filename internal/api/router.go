// Package api serves the productivity record and catalog over JSON HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/productivity"
)

// DefaultPersistTimeout bounds how long a mutating request waits for its
// write to reach the store.
const DefaultPersistTimeout = 10 * time.Second

type API struct {
	Provider *identity.Provider
	Sessions *productivity.Registry
	Catalog  catalog.Source
	Origins  []string
	Logger   *slog.Logger

	// PersistTimeout defaults to DefaultPersistTimeout.
	PersistTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *API) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *API) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *API) persistTimeout() time.Duration {
	if a.PersistTimeout <= 0 {
		return DefaultPersistTimeout
	}
	return a.PersistTimeout
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(a.loggingMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)
	r.Post("/auth/login", a.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Post("/auth/logout", a.handleLogout)
		r.Get("/me", a.handleMe)
		r.Get("/dashboard", a.handleDashboard)
		r.Get("/profile", a.handleProfile)

		r.Route("/productivity", func(r chi.Router) {
			r.Get("/", a.handleSnapshot)
			r.Post("/retry", a.handleRetry)
		})
		r.Route("/planner", func(r chi.Router) {
			r.Post("/", a.handleAddTask)
			r.Post("/{id}/toggle", a.handleToggleTask)
			r.Delete("/{id}", a.handleDeleteTask)
		})
		r.Post("/checkins", a.handleAddCheckin)
		r.Route("/brain-dump", func(r chi.Router) {
			r.Post("/", a.handleAddBrainDump)
			r.Delete("/{id}", a.handleDeleteBrainDump)
		})
		r.Post("/focus-sessions", a.handleRecordFocusSession)

		r.Get("/courses", a.handleListCourses)
		r.Post("/courses/{id}/enroll", a.handleEnroll)
		r.Get("/events", a.handleListEvents)
		r.Post("/events/{id}/register", a.handleRegisterEvent)
		r.Get("/resources", a.handleListResources)
		r.Post("/resources/{id}/favorite", a.handleToggleFavorite)

		r.With(adminOnly).Get("/admin/overview", a.handleAdminOverview)
	})

	return r
}
