package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"roomtour-backend/internal/domains/user"
	"roomtour-backend/pkg/database"
)

const userColumns = `username, name, email, avatar, description, created_at, updated_at`

type postgresRepository struct {
	db database.DB
}

func NewPostgresRepository(db database.DB) user.Repository {
	return &postgresRepository{db: db}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.Username, &u.Name, &u.Email, &u.Avatar, &u.Description, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *postgresRepository) FindByUsernameFold(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) ORDER BY username LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *postgresRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, name, email, avatar, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			avatar = EXCLUDED.avatar,
			description = EXCLUDED.description,
			updated_at = now()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, u.Username, u.Name, u.Email, u.Avatar, u.Description).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Username, err)
	}
	return nil
}
