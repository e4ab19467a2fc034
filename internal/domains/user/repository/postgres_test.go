package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomtour-backend/internal/domains/user"
)

func TestPostgres_FindByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	avatar := "http://cdn.test/a.png"
	rows := pgxmock.NewRows([]string{"username", "name", "email", "avatar", "description", "created_at", "updated_at"}).
		AddRow("anna", "Anna", "anna@example.com", &avatar, "", now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("anna").
		WillReturnRows(rows)

	repo := NewPostgresRepository(mock)
	u, err := repo.FindByUsername(context.Background(), "anna")
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Name)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, avatar, *u.Avatar)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindByUsernameFold_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE lower\(username\) = lower\(\$1\)`).
		WithArgs("ivan petrov").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	_, err = repo.FindByUsernameFold(context.Background(), "ivan petrov")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	u := &user.User{Username: "anna", Name: "anna", Email: "anna@example.com", Description: "hi"}

	mock.ExpectQuery(`(?s)INSERT INTO users.+ON CONFLICT \(username\) DO UPDATE`).
		WithArgs(u.Username, u.Name, u.Email, u.Avatar, u.Description).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Upsert(context.Background(), u))
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
