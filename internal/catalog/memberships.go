package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sadopc/focusnest/internal/identity"
)

// Attribute keys for membership lists in the user's attribute document.
const (
	KeyEnrolledCourses   = "enrolledCourses"
	KeyRegisteredEvents  = "registeredEvents"
	KeyFavoriteResources = "favoriteResources"
)

// Memberships are the catalog ids a user has enrolled in, registered for or
// marked as favorite. Methods return modified copies.
type Memberships struct {
	EnrolledCourses   []string `json:"enrolledCourses"`
	RegisteredEvents  []string `json:"registeredEvents"`
	FavoriteResources []string `json:"favoriteResources"`
}

func (m Memberships) Enrolled(courseID string) bool {
	return slices.Contains(m.EnrolledCourses, courseID)
}

func (m Memberships) Registered(eventID string) bool {
	return slices.Contains(m.RegisteredEvents, eventID)
}

func (m Memberships) Favorite(resourceID string) bool {
	return slices.Contains(m.FavoriteResources, resourceID)
}

// Enroll adds courseID. Already-enrolled ids leave m unchanged.
func (m Memberships) Enroll(courseID string) (Memberships, bool) {
	if courseID == "" || m.Enrolled(courseID) {
		return m, false
	}
	m.EnrolledCourses = append(slices.Clip(m.EnrolledCourses), courseID)
	return m, true
}

// Register adds eventID. Already-registered ids leave m unchanged.
func (m Memberships) Register(eventID string) (Memberships, bool) {
	if eventID == "" || m.Registered(eventID) {
		return m, false
	}
	m.RegisteredEvents = append(slices.Clip(m.RegisteredEvents), eventID)
	return m, true
}

// ToggleFavorite adds or removes resourceID and reports whether it is now a favorite.
func (m Memberships) ToggleFavorite(resourceID string) (Memberships, bool) {
	if m.Favorite(resourceID) {
		m.FavoriteResources = slices.DeleteFunc(slices.Clone(m.FavoriteResources), func(id string) bool {
			return id == resourceID
		})
		return m, false
	}
	m.FavoriteResources = append(slices.Clip(m.FavoriteResources), resourceID)
	return m, true
}

// DecodeMemberships reads the membership lists from attrs. Missing keys are
// empty; malformed values and blank or duplicate ids are dropped and
// reported.
func DecodeMemberships(attrs identity.Attributes) (Memberships, []error) {
	var m Memberships
	var issues []error
	m.EnrolledCourses, issues = decodeIDs(attrs, KeyEnrolledCourses, issues)
	m.RegisteredEvents, issues = decodeIDs(attrs, KeyRegisteredEvents, issues)
	m.FavoriteResources, issues = decodeIDs(attrs, KeyFavoriteResources, issues)
	return m, issues
}

func decodeIDs(attrs identity.Attributes, key string, issues []error) ([]string, []error) {
	raw, ok := attrs[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return []string{}, issues
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return []string{}, append(issues, fmt.Errorf("decode %s: %w", key, err))
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			issues = append(issues, fmt.Errorf("decode %s: dropped blank or duplicate id %q", key, id))
			continue
		}
		out = append(out, id)
	}
	return out, issues
}

// Patch encodes the lists named by keys.
func (m Memberships) Patch(keys ...string) (identity.Attributes, error) {
	patch := identity.Attributes{}
	for _, k := range keys {
		var v []string
		switch k {
		case KeyEnrolledCourses:
			v = m.EnrolledCourses
		case KeyRegisteredEvents:
			v = m.RegisteredEvents
		case KeyFavoriteResources:
			v = m.FavoriteResources
		default:
			return nil, fmt.Errorf("unknown membership key %q", k)
		}
		if v == nil {
			v = []string{}
		}
		if err := patch.Set(k, v); err != nil {
			return nil, err
		}
	}
	return patch, nil
}
