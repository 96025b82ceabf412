package catalog

import (
	"fmt"
	"slices"
	"time"
)

type CourseFilter string

const (
	CoursesAll       CourseFilter = "all"
	CoursesEnrolled  CourseFilter = "enrolled"
	CoursesAvailable CourseFilter = "available"
)

var CourseFilters = []CourseFilter{CoursesAll, CoursesEnrolled, CoursesAvailable}

func ParseCourseFilter(s string) (CourseFilter, error) {
	if s == "" {
		return CoursesAll, nil
	}
	f := CourseFilter(s)
	if !slices.Contains(CourseFilters, f) {
		return "", fmt.Errorf("unknown course filter %q", s)
	}
	return f, nil
}

// FilterCourses keeps catalog order.
func FilterCourses(courses []Course, enrolled []string, f CourseFilter) []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		in := slices.Contains(enrolled, c.ID)
		switch {
		case f == CoursesEnrolled && !in:
			continue
		case f == CoursesAvailable && in:
			continue
		}
		out = append(out, c)
	}
	return out
}

type EventFilter string

const (
	EventsAll        EventFilter = "all"
	EventsRegistered EventFilter = "registered"
)

var EventFilters = []EventFilter{EventsAll, EventsRegistered}

func ParseEventFilter(s string) (EventFilter, error) {
	if s == "" {
		return EventsAll, nil
	}
	f := EventFilter(s)
	if !slices.Contains(EventFilters, f) {
		return "", fmt.Errorf("unknown event filter %q", s)
	}
	return f, nil
}

// FilterEvents returns the matching events sorted by date, earliest first.
// The input slice is not reordered.
func FilterEvents(events []Event, registered []string, f EventFilter) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f == EventsRegistered && !slices.Contains(registered, e.ID) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Upcoming counts events that start at or after now.
func Upcoming(events []Event, now time.Time) int {
	n := 0
	for _, e := range events {
		if !e.Date.Before(now) {
			n++
		}
	}
	return n
}

// ParseCategoryFilter accepts "all" (or empty) and the known categories.
// An empty Category means no filtering.
func ParseCategoryFilter(s string) (Category, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown resource category %q", s)
	}
	return c, nil
}

func FilterResources(resources []Resource, category Category) []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	return out
}

func ResolveCourses(courses []Course, ids []string) []Course {
	return resolve(courses, ids, func(c Course) string { return c.ID })
}

func ResolveEvents(events []Event, ids []string) []Event {
	return resolve(events, ids, func(e Event) string { return e.ID })
}

func ResolveResources(resources []Resource, ids []string) []Resource {
	return resolve(resources, ids, func(r Resource) string { return r.ID })
}

// resolve keeps catalog order and silently skips ids with no record.
func resolve[T any](items []T, ids []string, id func(T) string) []T {
	out := make([]T, 0, len(ids))
	for _, it := range items {
		if slices.Contains(ids, id(it)) {
			out = append(out, it)
		}
	}
	return out
}

func FindCourse(courses []Course, id string) (Course, bool) {
	i := slices.IndexFunc(courses, func(c Course) bool { return c.ID == id })
	if i < 0 {
		return Course{}, false
	}
	return courses[i], true
}

func FindEvent(events []Event, id string) (Event, bool) {
	i := slices.IndexFunc(events, func(e Event) bool { return e.ID == id })
	if i < 0 {
		return Event{}, false
	}
	return events[i], true
}

func FindResource(resources []Resource, id string) (Resource, bool) {
	i := slices.IndexFunc(resources, func(r Resource) bool { return r.ID == id })
	if i < 0 {
		return Resource{}, false
	}
	return resources[i], true
}
