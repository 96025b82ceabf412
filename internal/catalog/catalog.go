// Package catalog holds the platform's courses, events and resources and the
// per-user membership lists that views filter them against.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

type Course struct {
	ID          string    `json:"_id"`
	Title       string    `json:"courseTitle"`
	Description string    `json:"courseDescription"`
	Instructor  string    `json:"courseInstructor"`
	StartDate   time.Time `json:"courseStartDate"`
	EndDate     time.Time `json:"courseEndDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Event struct {
	ID          string    `json:"_id"`
	Name        string    `json:"eventName"`
	Date        time.Time `json:"eventDate"`
	Location    string    `json:"eventLocation"`
	Description string    `json:"eventDescription"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Category string

const (
	CategoryArticle Category = "article"
	CategoryVideo   Category = "video"
	CategoryTool    Category = "tool"
	CategoryGuide   Category = "guide"
	CategoryOther   Category = "other"
)

var Categories = []Category{CategoryArticle, CategoryVideo, CategoryTool, CategoryGuide, CategoryOther}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type Resource struct {
	ID          string    `json:"_id"`
	Title       string    `json:"resourceTitle"`
	Category    Category  `json:"resourceCategory"`
	Link        string    `json:"resourceLink"`
	Description string    `json:"resourceDescription"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Source is the data-fetch boundary for catalog records.
type Source interface {
	ListCourses(ctx context.Context) ([]Course, error)
	ListEvents(ctx context.Context) ([]Event, error)
	ListResources(ctx context.Context) ([]Resource, error)
}

// Listing is one fetch of all three catalogs.
type Listing struct {
	Courses   []Course
	Events    []Event
	Resources []Resource
}

// Overview is the admin summary of the catalog.
type Overview struct {
	Courses   int `json:"total_courses"`
	Events    int `json:"total_events"`
	Resources int `json:"total_resources"`
}

func (l Listing) Overview() Overview {
	return Overview{Courses: len(l.Courses), Events: len(l.Events), Resources: len(l.Resources)}
}

// Load fetches courses, events and resources concurrently.
func Load(ctx context.Context, src Source) (Listing, error) {
	var l Listing
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		courses, err := src.ListCourses(ctx)
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		l.Courses = courses
		return nil
	})
	g.Go(func() error {
		events, err := src.ListEvents(ctx)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		l.Events = events
		return nil
	})
	g.Go(func() error {
		resources, err := src.ListResources(ctx)
		if err != nil {
			return fmt.Errorf("list resources: %w", err)
		}
		l.Resources = resources
		return nil
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}
	return l, nil
}
