package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-entry-board/internal/cache"
	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

type profileFinder interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

// UserService serves public profiles through the profile cache. Cache
// failures degrade to a directory read.
type UserService struct {
	users    profileFinder
	profiles cache.ProfileCache
}

func NewUserService(users profileFinder, profiles cache.ProfileCache) *UserService {
	return &UserService{users: users, profiles: profiles}
}

func (s *UserService) Profile(ctx context.Context, username string) (model.PublicProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.PublicProfile{}, apierror.Validation("username is required", "username")
	}

	cached, err := s.profiles.Get(ctx, username)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, model.ErrCacheMiss) {
		slog.Warn("profile cache read failed", "username", username, "error", err)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return model.PublicProfile{}, err
	}

	profile := model.PublicProfile{ID: user.ID, Username: user.Username, Avatar: user.Avatar}
	if err := s.profiles.Set(ctx, profile); err != nil {
		slog.Warn("profile cache write failed", "username", username, "error", err)
	}
	return profile, nil
}
