package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-entry-board/internal/cache"
	"go-entry-board/internal/event"
	"go-entry-board/internal/identity"
	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	UpdateProfile(ctx context.Context, u model.User) error
}

type admissionChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

type AuthService struct {
	provider  identity.Provider
	users     userStore
	whitelist admissionChecker
	tokens    *TokenService
	profiles  cache.ProfileCache
	admins    map[string]struct{}
	bus       event.Bus
	now       func() time.Time
}

func NewAuthService(
	provider identity.Provider,
	users userStore,
	whitelist admissionChecker,
	tokens *TokenService,
	profiles cache.ProfileCache,
	adminIDs []string,
	bus event.Bus,
) *AuthService {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}

	return &AuthService{
		provider:  provider,
		users:     users,
		whitelist: whitelist,
		tokens:    tokens,
		profiles:  profiles,
		admins:    admins,
		bus:       bus,
		now:       time.Now,
	}
}

func (s *AuthService) AuthCodeURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Login runs the full callback workflow. The whitelist is consulted only when
// the identity has no user record yet; known users are let through even if
// they were removed from the whitelist later.
func (s *AuthService) Login(ctx context.Context, code string) (model.LoginResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.LoginResult{}, apierror.Validation("authorization code is required", "code")
	}

	ident, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return model.LoginResult{}, err
	}

	var existing *model.User
	found, err := s.users.FindByID(ctx, ident.ID)
	switch {
	case err == nil:
		existing = &found
	case isNotFound(err):
		admitted := s.isAdmin(ident.ID)
		if !admitted {
			admitted, err = s.admit(ctx, ident.Username)
			if err != nil {
				return model.LoginResult{}, err
			}
		}
		if !admitted {
			s.bus.Publish(event.Event{Type: event.TypeLoginRejected, Subject: ident.Username, ActorID: ident.ID})
			return model.LoginResult{}, apierror.NotWhitelisted(ident.Username)
		}
	default:
		return model.LoginResult{}, err
	}

	user, err := s.ensureUser(ctx, ident, existing)
	if err != nil {
		return model.LoginResult{}, err
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}

	return model.LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      user,
		Created:   existing == nil,
	}, nil
}

func (s *AuthService) ValidateToken(token string) (*model.AuthClaims, error) {
	return s.tokens.Verify(token)
}

// admit reports whether username is on the whitelist. Configured admins
// skip this check so a fresh deployment can bootstrap its whitelist.
func (s *AuthService) admit(ctx context.Context, username string) (bool, error) {
	ok, err := s.whitelist.Exists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check whitelist: %w", err)
	}
	return ok, nil
}

// ensureUser creates the directory record on first login. On later logins
// it refreshes username, avatar and roles and drops cached profiles.
func (s *AuthService) ensureUser(ctx context.Context, ident model.Identity, existing *model.User) (model.User, error) {
	now := s.now().UTC()
	roles := s.rolesFor(ident.ID)

	if existing == nil {
		user := model.User{
			ID:        ident.ID,
			Username:  ident.Username,
			Avatar:    ident.Avatar,
			Roles:     roles,
			JoinedAt:  now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return model.User{}, err
		}
		s.bus.Publish(event.Event{Type: event.TypeUserRegistered, Subject: user.Username, ActorID: user.ID, Actor: user.Username})
		return user, nil
	}

	user := *existing
	previousUsername := user.Username
	user.Username = ident.Username
	user.Avatar = ident.Avatar
	user.Roles = roles
	user.UpdatedAt = now
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return model.User{}, err
	}

	s.forgetProfile(ctx, previousUsername)
	if !strings.EqualFold(previousUsername, user.Username) {
		s.forgetProfile(ctx, user.Username)
	}

	return user, nil
}

// isAdmin matches the stable provider id. Usernames can be released and
// claimed by someone else, so they never grant the role.
func (s *AuthService) isAdmin(id string) bool {
	_, ok := s.admins[id]
	return ok
}

func (s *AuthService) rolesFor(id string) []string {
	if s.isAdmin(id) {
		return []string{model.RoleAdmin}
	}
	return []string{}
}

func (s *AuthService) forgetProfile(ctx context.Context, username string) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.Delete(ctx, username); err != nil {
		slog.Warn("failed to invalidate cached profile", "username", username, "error", err)
	}
}

func isNotFound(err error) bool {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus == http.StatusNotFound
	}
	return false
}
