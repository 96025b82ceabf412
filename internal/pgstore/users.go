package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sadopc/focusnest/internal/identity"
)

func (s *Store) CreateUser(ctx context.Context, c identity.Credentials) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, first_name, last_name, user_type, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.UserID, c.Email, c.FirstName, c.LastName, string(c.Type), c.PasswordHash, createdAt.UTC(),
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
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (s *Store) UserByID(ctx context.Context, id string) (*identity.Credentials, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func scanUser(row pgx.Row) (*identity.Credentials, error) {
	c := &identity.Credentials{}
	var userType string
	err := row.Scan(&c.UserID, &c.Email, &c.FirstName, &c.LastName, &userType, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	c.Type = identity.Type(userType)
	return c, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
