package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/focusnest/internal/identity"
)

func (s *Store) CreateUser(ctx context.Context, c identity.Credentials) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, user_type, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Email, c.FirstName, c.LastName, string(c.Type), c.PasswordHash,
		createdAt.UTC().Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return identity.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userColumns = `id, email, first_name, last_name, user_type, password_hash, created_at`

func (s *Store) UserByEmail(ctx context.Context, email string) (*identity.Credentials, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *Store) UserByID(ctx context.Context, id string) (*identity.Credentials, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (*identity.Credentials, error) {
	c := &identity.Credentials{}
	var userType, createdAt string
	err := row.Scan(&c.UserID, &c.Email, &c.FirstName, &c.LastName, &userType, &c.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	c.Type = identity.Type(userType)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
