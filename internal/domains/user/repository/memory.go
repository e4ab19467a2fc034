package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"roomtour-backend/internal/domains/user"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
	now   func() time.Time
}

// NewMemoryRepository keeps profiles in process memory; they reset on restart.
func NewMemoryRepository() user.Repository {
	return &memoryRepository{
		users: make(map[string]user.User),
		now:   time.Now,
	}
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepository) FindByUsernameFold(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, u := range r.users {
		if strings.EqualFold(name, username) {
			found := u
			return &found, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memoryRepository) Upsert(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.users[u.Username]; ok {
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.users[u.Username] = *u
	return nil
}
