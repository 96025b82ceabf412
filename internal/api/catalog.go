package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sadopc/focusnest/internal/catalog"
)

type coursesResponse struct {
	Filter  catalog.CourseFilter `json:"filter"`
	Courses []catalog.Course     `json:"courses"`
}

type eventsResponse struct {
	Filter catalog.EventFilter `json:"filter"`
	Events []catalog.Event     `json:"events"`
}

type resourcesResponse struct {
	Category  string             `json:"category"`
	Resources []catalog.Resource `json:"resources"`
}

func (a *API) listing(w http.ResponseWriter, r *http.Request) (catalog.Listing, bool) {
	l, err := catalog.Load(r.Context(), a.Catalog)
	if err != nil {
		a.logger().Error("Failed to load catalog", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load catalog")
		return catalog.Listing{}, false
	}
	return l, true
}

func (a *API) handleListCourses(w http.ResponseWriter, r *http.Request) {
	f, err := catalog.ParseCourseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	courses, err := a.Catalog.ListCourses(r.Context())
	if err != nil {
		a.logger().Error("Failed to list courses", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load courses")
		return
	}
	enrolled := s.Snapshot().Memberships.EnrolledCourses
	writeJSON(w, http.StatusOK, coursesResponse{Filter: f, Courses: catalog.FilterCourses(courses, enrolled, f)})
}

func (a *API) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	courses, err := a.Catalog.ListCourses(r.Context())
	if err != nil {
		a.logger().Error("Failed to list courses", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load courses")
		return
	}
	if _, ok := catalog.FindCourse(courses, id); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Course not found")
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.Enroll(id)
	a.respond(w, r, http.StatusOK, snap, receipt, err)
}

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	f, err := catalog.ParseEventFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
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
	registered := s.Snapshot().Memberships.RegisteredEvents
	writeJSON(w, http.StatusOK, eventsResponse{Filter: f, Events: catalog.FilterEvents(events, registered, f)})
}

func (a *API) handleRegisterEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	events, err := a.Catalog.ListEvents(r.Context())
	if err != nil {
		a.logger().Error("Failed to list events", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load events")
		return
	}
	if _, ok := catalog.FindEvent(events, id); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Event not found")
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.RegisterEvent(id)
	a.respond(w, r, http.StatusOK, snap, receipt, err)
}

func (a *API) handleListResources(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategoryFilter(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	resources, err := a.Catalog.ListResources(r.Context())
	if err != nil {
		a.logger().Error("Failed to list resources", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load resources")
		return
	}
	name := string(category)
	if name == "" {
		name = "all"
	}
	writeJSON(w, http.StatusOK, resourcesResponse{Category: name, Resources: catalog.FilterResources(resources, category)})
}

func (a *API) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resources, err := a.Catalog.ListResources(r.Context())
	if err != nil {
		a.logger().Error("Failed to list resources", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load resources")
		return
	}
	if _, ok := catalog.FindResource(resources, id); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	snap, receipt, err := s.ToggleFavorite(id)
	a.respond(w, r, http.StatusOK, snap, receipt, err)
}

func (a *API) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	l, ok := a.listing(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, l.Overview())
}
