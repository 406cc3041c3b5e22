package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

// The Memory* repositories hold board state in process. They satisfy the same
// contracts as the pgx repositories and back the service and handler tests.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]model.User{}}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, apierror.NotFound("user", id)
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(username))
	var found *model.User
	for _, u := range r.users {
		if strings.ToLower(u.Username) != key {
			continue
		}
		if found == nil || u.UpdatedAt.After(found.UpdatedAt) {
			candidate := u
			found = &candidate
		}
	}
	if found == nil {
		return model.User{}, apierror.NotFound("user", username)
	}
	return cloneUser(*found), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok {
		return apierror.NotFound("user", u.ID)
	}
	existing.Username = u.Username
	existing.Avatar = u.Avatar
	existing.Roles = append([]string(nil), u.Roles...)
	existing.UpdatedAt = u.UpdatedAt
	r.users[u.ID] = existing
	return nil
}

func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

type MemoryWhitelistRepository struct {
	mu      sync.RWMutex
	entries map[string]model.WhitelistEntry
}

func NewMemoryWhitelistRepository() *MemoryWhitelistRepository {
	return &MemoryWhitelistRepository{entries: map[string]model.WhitelistEntry{}}
}

func (r *MemoryWhitelistRepository) Exists(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[whitelistKey(username)]
	return ok, nil
}

func (r *MemoryWhitelistRepository) Create(_ context.Context, e model.WhitelistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := whitelistKey(e.Username)
	if _, ok := r.entries[key]; ok {
		return apierror.Conflict("username already whitelisted", e.Username)
	}
	r.entries[key] = e
	return nil
}

func (r *MemoryWhitelistRepository) List(_ context.Context) ([]model.WhitelistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.WhitelistEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out, nil
}

func (r *MemoryWhitelistRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := whitelistKey(username)
	if _, ok := r.entries[key]; !ok {
		return apierror.NotFound("whitelist entry", username)
	}
	delete(r.entries, key)
	return nil
}

type MemoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]model.Entry
}

func NewMemoryEntryRepository() *MemoryEntryRepository {
	return &MemoryEntryRepository{entries: map[string]model.Entry{}}
}

func (r *MemoryEntryRepository) Create(_ context.Context, e model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[e.ID] = cloneEntry(e)
	return nil
}

func (r *MemoryEntryRepository) FindByID(_ context.Context, id string) (model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return model.Entry{}, apierror.NotFound("entry", id)
	}
	return cloneEntry(e), nil
}

func (r *MemoryEntryRepository) List(_ context.Context) ([]model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *MemoryEntryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return apierror.NotFound("entry", id)
	}
	delete(r.entries, id)
	return nil
}

func whitelistKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func cloneUser(u model.User) model.User {
	u.Roles = append([]string(nil), u.Roles...)
	return u
}

func cloneEntry(e model.Entry) model.Entry {
	e.Categories = append([]string(nil), e.Categories...)
	e.Variation = append([]string{}, e.Variation...)
	return e
}
