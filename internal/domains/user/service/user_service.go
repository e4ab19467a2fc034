package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/domains/user"
)

const maxUsernameLength = 150

type userService struct {
	repo            user.Repository
	uploads         upload.Service
	avatarValidator *upload.Validator
	publicURL       string
}

// NewUserService wires profile storage with avatar uploads. publicURL is the
// frontend base used to build share links.
func NewUserService(repo user.Repository, uploads upload.Service, avatarValidator *upload.Validator, publicURL string) user.Service {
	return &userService{
		repo:            repo,
		uploads:         uploads,
		avatarValidator: avatarValidator,
		publicURL:       strings.TrimRight(publicURL, "/"),
	}
}

func validateUsername(username string) error {
	if username == "" || len(username) > maxUsernameLength || strings.ContainsAny(username, "/\\") {
		return user.ErrInvalidUsername
	}
	return nil
}

// find resolves a stored profile: exact match first, then the slugged form
// ("ivan-petrov" -> "ivan petrov") case-insensitively.
func (s *userService) find(ctx context.Context, username string) (*user.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err == nil || !errors.Is(err, user.ErrUserNotFound) {
		return u, err
	}

	if !strings.Contains(username, "-") {
		return nil, user.ErrUserNotFound
	}
	return s.repo.FindByUsernameFold(ctx, strings.ReplaceAll(username, "-", " "))
}

// load returns the stored profile or the placeholder when there is none.
func (s *userService) load(ctx context.Context, username string) (*user.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	u, err := s.find(ctx, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.Placeholder(username), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", username, err)
	}
	return u, nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*user.User, error) {
	return s.load(ctx, username)
}

func (s *userService) UpdateProfile(ctx context.Context, username string, req user.UpdateProfileRequest) (*user.User, error) {
	// 1. Load (stored or placeholder)
	u, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	// 2. Apply provided fields
	if req.Description != nil {
		u.Description = strings.TrimSpace(*req.Description)
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}

	// 3. Persist
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile %s: %w", username, err)
	}

	log.Info().Str("username", u.Username).Msg("Profile updated")
	return u, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, username string, file upload.File) (*user.User, error) {
	u, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	result, err := s.uploads.Store(ctx, s.avatarValidator, "avatars/"+url.PathEscape(u.Username)+"/", file)
	if err != nil {
		return nil, err
	}

	u.Avatar = &result.URL
	if err := s.repo.Upsert(ctx, u); err != nil {
		if rmErr := s.uploads.Remove(ctx, result.Key); rmErr != nil {
			log.Warn().Err(rmErr).Str("key", result.Key).Msg("[UserService] failed to remove orphan avatar")
		}
		return nil, fmt.Errorf("save avatar %s: %w", username, err)
	}

	log.Info().Str("username", u.Username).Str("avatar", result.URL).Msg("Avatar updated")
	return u, nil
}

func (s *userService) ShareProfile(ctx context.Context, username string) (*user.ShareResponse, error) {
	u, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	return &user.ShareResponse{
		URL:   s.publicURL + "/" + url.PathEscape(username),
		Title: "Профиль " + u.Name,
	}, nil
}
