package service

import (
	"context"
	"time"

	"go-entry-board/internal/cache"
	"go-entry-board/internal/event"
	"go-entry-board/internal/identity"
	"go-entry-board/internal/model"
	"go-entry-board/internal/repository"
)

type authFixture struct {
	service   *AuthService
	provider  *identity.MockProvider
	users     *repository.MemoryUserRepository
	whitelist *repository.MemoryWhitelistRepository
	profiles  *cache.Memory
	bus       *event.InMemoryBus
}

func newAuthFixture(tokens *TokenService, adminIDs ...string) *authFixture {
	f := &authFixture{
		provider:  &identity.MockProvider{},
		users:     repository.NewMemoryUserRepository(),
		whitelist: repository.NewMemoryWhitelistRepository(),
		profiles:  cache.NewMemory(time.Minute),
		bus:       event.NewBus(),
	}
	f.service = NewAuthService(f.provider, f.users, f.whitelist, tokens, f.profiles, adminIDs, f.bus)
	return f
}

func (f *authFixture) allow(username string) {
	_ = f.whitelist.Create(context.Background(), model.WhitelistEntry{ID: username, Username: username, AddedAt: time.Now().UTC()})
}

func claimsFor(id string, username string, roles ...string) model.AuthClaims {
	return model.AuthClaims{UserID: id, Username: username, Roles: roles}
}
