package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/focusnest/internal/catalog"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// ListCourses returns courses in insertion order.
func (s *Store) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, instructor, start_date, end_date, created_at, updated_at
		 FROM courses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := []catalog.Course{}
	for rows.Next() {
		var c catalog.Course
		var start, end, createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Instructor, &start, &end, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.StartDate, c.EndDate = parseTime(start), parseTime(end)
		c.CreatedAt, c.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListEvents returns events in insertion order; callers sort by date.
func (s *Store) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, event_date, location, description, created_at, updated_at
		 FROM events ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []catalog.Event{}
	for rows.Next() {
		var e catalog.Event
		var date, createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.Name, &date, &e.Location, &e.Description, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.Date = parseTime(date)
		e.CreatedAt, e.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) ListResources(ctx context.Context) ([]catalog.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, link, description, created_at, updated_at
		 FROM resources ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	resources := []catalog.Resource{}
	for rows.Next() {
		var r catalog.Resource
		var category, createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.Title, &category, &r.Link, &r.Description, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.Category = catalog.Category(category)
		r.CreatedAt, r.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// SeedCatalog upserts every record in l by id.
func (s *Store) SeedCatalog(ctx context.Context, l catalog.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range l.Courses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO courses (id, title, description, instructor, start_date, end_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description,
			   instructor = excluded.instructor, start_date = excluded.start_date,
			   end_date = excluded.end_date, updated_at = excluded.updated_at`,
			c.ID, c.Title, c.Description, c.Instructor, formatTime(c.StartDate), formatTime(c.EndDate),
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert course %s: %w", c.ID, err)
		}
	}
	for _, e := range l.Events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, name, event_date, location, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, event_date = excluded.event_date,
			   location = excluded.location, description = excluded.description, updated_at = excluded.updated_at`,
			e.ID, e.Name, formatTime(e.Date), e.Location, e.Description, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert event %s: %w", e.ID, err)
		}
	}
	for _, r := range l.Resources {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO resources (id, title, category, link, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET title = excluded.title, category = excluded.category,
			   link = excluded.link, description = excluded.description, updated_at = excluded.updated_at`,
			r.ID, r.Title, string(r.Category), r.Link, r.Description, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert resource %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
