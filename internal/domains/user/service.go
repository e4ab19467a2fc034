package user

import (
	"context"

	"roomtour-backend/internal/domains/upload"
)

type Service interface {
	GetProfile(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, username string, req UpdateProfileRequest) (*User, error)
	UpdateAvatar(ctx context.Context, username string, file upload.File) (*User, error)
	ShareProfile(ctx context.Context, username string) (*ShareResponse, error)
}
