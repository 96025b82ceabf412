package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sadopc/focusnest/internal/catalog"
)

func (s *Store) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, instructor, start_date, end_date, created_at, updated_at
		 FROM courses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Course, error) {
		var c catalog.Course
		err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Instructor, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan courses: %w", err)
	}
	return courses, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, event_date, location, description, created_at, updated_at
		 FROM events ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Event, error) {
		var e catalog.Event
		err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Description, &e.CreatedAt, &e.UpdatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return events, nil
}

func (s *Store) ListResources(ctx context.Context) ([]catalog.Resource, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, category, link, description, created_at, updated_at
		 FROM resources ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	resources, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Resource, error) {
		var r catalog.Resource
		var category string
		err := row.Scan(&r.ID, &r.Title, &category, &r.Link, &r.Description, &r.CreatedAt, &r.UpdatedAt)
		r.Category = catalog.Category(category)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan resources: %w", err)
	}
	return resources, nil
}

// SeedCatalog upserts every record in l by id in one batch.
func (s *Store) SeedCatalog(ctx context.Context, l catalog.Listing) error {
	batch := &pgx.Batch{}
	for _, c := range l.Courses {
		batch.Queue(`INSERT INTO courses (id, title, description, instructor, start_date, end_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET title = excluded.title, description = excluded.description,
			  instructor = excluded.instructor, start_date = excluded.start_date,
			  end_date = excluded.end_date, updated_at = excluded.updated_at`,
			c.ID, c.Title, c.Description, c.Instructor, c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt)
	}
	for _, e := range l.Events {
		batch.Queue(`INSERT INTO events (id, name, event_date, location, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, event_date = excluded.event_date,
			  location = excluded.location, description = excluded.description, updated_at = excluded.updated_at`,
			e.ID, e.Name, e.Date, e.Location, e.Description, e.CreatedAt, e.UpdatedAt)
	}
	for _, r := range l.Resources {
		batch.Queue(`INSERT INTO resources (id, title, category, link, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET title = excluded.title, category = excluded.category,
			  link = excluded.link, description = excluded.description, updated_at = excluded.updated_at`,
			r.ID, r.Title, string(r.Category), r.Link, r.Description, r.CreatedAt, r.UpdatedAt)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return tx.Commit(ctx)
}
