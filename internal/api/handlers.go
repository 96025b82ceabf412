package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sadopc/focusnest/internal/catalog"
	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/productivity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string            `json:"access_token"`
	User        identity.Identity `json:"user"`
}

type taskRequest struct {
	Time string `json:"time"`
	Task string `json:"task"`
}

type checkinRequest struct {
	Mood  productivity.Mood `json:"mood"`
	Notes string            `json:"notes"`
}

type brainDumpRequest struct {
	Content string `json:"content"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password required")
		return
	}
	ident, err := a.Provider.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}
	if err != nil {
		a.logger().Error("Failed to authenticate", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to authenticate")
		return
	}
	token, err := a.Provider.IssueToken(ident)
	if err != nil {
		a.logger().Error("Failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}
	a.logger().Info("User logged in", "user_id", ident.UserID)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: ident})
}

// handleLogout drops the server-side session; the client discards its token.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())
	if err := a.Sessions.Release(r.Context(), ident.UserID); err != nil {
		a.logger().Warn("Session closed with unflushed writes", "user_id", ident.UserID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, ident)
}

// session returns the caller's open session, writing an error response
// when it cannot be loaded.
func (a *API) session(w http.ResponseWriter, r *http.Request) (*productivity.Session, bool) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
		return nil, false
	}
	s, err := a.Sessions.Acquire(r.Context(), ident)
	if errors.Is(err, productivity.ErrClosed) {
		writeError(w, http.StatusServiceUnavailable, "SESSION_CLOSED", "Session closed, try again")
		return nil, false
	}
	if err != nil {
		a.logger().Error("Failed to open session", "user_id", ident.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user data")
		return nil, false
	}
	return s, true
}

// respond finishes a mutating request. The change is already applied in
// memory; a write that cannot be confirmed in time is reported as 503 so the
// client knows to retry.
func (a *API) respond(w http.ResponseWriter, r *http.Request, status int, snap productivity.Snapshot, receipt *productivity.Receipt, err error) {
	switch {
	case errors.Is(err, productivity.ErrEmptyText),
		errors.Is(err, productivity.ErrInvalidTime),
		errors.Is(err, productivity.ErrInvalidMood):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	case errors.Is(err, productivity.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "SESSION_CLOSED", "Session closed, try again")
		return
	case err != nil:
		a.logger().Error("Operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.persistTimeout())
	defer cancel()
	if err := receipt.Wait(ctx); err != nil {
		var pe *productivity.PersistError
		if errors.As(err, &pe) {
			writeError(w, http.StatusServiceUnavailable, "PERSIST_FAILED", pe.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "PERSIST_FAILED", "Save still pending: "+err.Error())
		return
	}
	writeJSON(w, status, snap)
}

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// handleRetry re-queues writes that failed after every retry.
func (a *API) handleRetry(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	receipt := s.RetryFailed()
	a.respond(w, r, http.StatusOK, s.Snapshot(), receipt, nil)
}

func (a *API) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := productivity.NormalizeTime(req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.AddTask(req.Time, req.Task)
	a.respond(w, r, http.StatusCreated, snap, receipt, err)
}

func (a *API) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.ToggleTask(chi.URLParam(r, "id"))
	a.respond(w, r, http.StatusOK, snap, receipt, err)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.DeleteTask(chi.URLParam(r, "id"))
	a.respond(w, r, http.StatusOK, snap, receipt, err)
}

func (a *API) handleAddCheckin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.AddCheckin(req.Mood, req.Notes)
	a.respond(w, r, http.StatusCreated, snap, receipt, err)
}

func (a *API) handleAddBrainDump(w http.ResponseWriter, r *http.Request) {
	var req brainDumpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.AddBrainDump(req.Content)
	a.respond(w, r, http.StatusCreated, snap, receipt, err)
}

func (a *API) handleDeleteBrainDump(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.DeleteBrainDump(chi.URLParam(r, "id"))
	a.respond(w, r, http.StatusOK, snap, receipt, err)
}

func (a *API) handleRecordFocusSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.RecordFocusSession()
	a.respond(w, r, http.StatusCreated, snap, receipt, err)
}

type dashboardResponse struct {
	Greeting        string                          `json:"greeting"`
	EnrolledCourses int                             `json:"enrolled_courses"`
	UpcomingEvents  int                             `json:"upcoming_events"`
	TasksToday      int                             `json:"tasks_today"`
	Checkins        int                             `json:"checkins"`
	FocusToday      int                             `json:"focus_sessions_today"`
	RecentCheckins  []productivity.EmotionalCheckin `json:"recent_checkins"`
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	events, err := a.Catalog.ListEvents(r.Context())
	if err != nil {
		a.logger().Error("Failed to list events", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load events")
		return
	}
	now := a.now()
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, dashboardResponse{
		Greeting:        s.Identity().DisplayName(),
		EnrolledCourses: len(snap.Memberships.EnrolledCourses),
		UpcomingEvents:  catalog.Upcoming(events, now),
		TasksToday:      snap.TasksCreatedOn(now),
		Checkins:        len(snap.Checkins),
		FocusToday:      len(snap.SessionsOn(now)),
		RecentCheckins:  snap.RecentCheckins(5),
	})
}

type profileResponse struct {
	User              identity.Identity  `json:"user"`
	EnrolledCourses   []catalog.Course   `json:"enrolled_courses"`
	RegisteredEvents  []catalog.Event    `json:"registered_events"`
	FavoriteResources []catalog.Resource `json:"favorite_resources"`
	Checkins          int                `json:"checkins"`
	PendingTasks      int                `json:"pending_tasks"`
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	l, ok := a.listing(w, r)
	if !ok {
		return
	}
	snap := s.Snapshot()
	writeJSON(w, http.StatusOK, profileResponse{
		User:              s.Identity(),
		EnrolledCourses:   catalog.ResolveCourses(l.Courses, snap.Memberships.EnrolledCourses),
		RegisteredEvents:  catalog.ResolveEvents(l.Events, snap.Memberships.RegisteredEvents),
		FavoriteResources: catalog.ResolveResources(l.Resources, snap.Memberships.FavoriteResources),
		Checkins:          len(snap.Checkins),
		PendingTasks:      snap.PendingTasks(),
	})
}
