package user

import "context"

// Repository stores profiles that were edited at least once.
type Repository interface {
	// FindByUsername matches exactly.
	// Returns: ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByUsernameFold matches case-insensitively.
	// Returns: ErrUserNotFound
	FindByUsernameFold(ctx context.Context, username string) (*User, error)

	// Upsert creates or replaces the profile keyed by Username.
	Upsert(ctx context.Context, u *User) error
}
