package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-entry-board/internal/event"
	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

type whitelistStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, e model.WhitelistEntry) error
	List(ctx context.Context) ([]model.WhitelistEntry, error)
	Delete(ctx context.Context, username string) error
}

// WhitelistService manages who may open an account. Removing a username
// does not touch accounts or tokens that already exist.
type WhitelistService struct {
	whitelist whitelistStore
	bus       event.Bus
	now       func() time.Time
}

func NewWhitelistService(whitelist whitelistStore, bus event.Bus) *WhitelistService {
	return &WhitelistService{whitelist: whitelist, bus: bus, now: time.Now}
}

func (s *WhitelistService) Add(ctx context.Context, actor model.AuthClaims, username string) (model.WhitelistEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.WhitelistEntry{}, apierror.Validation("username is required", "username")
	}

	exists, err := s.whitelist.Exists(ctx, username)
	if err != nil {
		return model.WhitelistEntry{}, err
	}
	if exists {
		return model.WhitelistEntry{}, apierror.Conflict("username already whitelisted", username)
	}

	entry := model.WhitelistEntry{
		ID:       uuid.NewString(),
		Username: username,
		AddedAt:  s.now().UTC(),
	}
	if err := s.whitelist.Create(ctx, entry); err != nil {
		return model.WhitelistEntry{}, err
	}

	s.bus.Publish(event.Event{Type: event.TypeWhitelistAdded, Subject: username, ActorID: actor.UserID, Actor: actor.Username})
	return entry, nil
}

func (s *WhitelistService) List(ctx context.Context) ([]model.WhitelistEntry, error) {
	return s.whitelist.List(ctx)
}

func (s *WhitelistService) Remove(ctx context.Context, actor model.AuthClaims, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apierror.Validation("username is required", "username")
	}

	if err := s.whitelist.Delete(ctx, username); err != nil {
		return err
	}

	s.bus.Publish(event.Event{Type: event.TypeWhitelistRemoved, Subject: username, ActorID: actor.UserID, Actor: actor.Username})
	return nil
}
