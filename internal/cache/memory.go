package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"go-entry-board/internal/model"
)

type Memory struct {
	store *gocache.Cache
}

// NewMemory builds an in-process cache. Expired entries are swept every
// 1.5 * ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{store: gocache.New(ttl, ttl+ttl/2)}
}

func (m *Memory) Get(_ context.Context, username string) (model.PublicProfile, error) {
	v, ok := m.store.Get(key(username))
	if !ok {
		return model.PublicProfile{}, model.ErrCacheMiss
	}
	profile, ok := v.(model.PublicProfile)
	if !ok {
		return model.PublicProfile{}, model.ErrCacheMiss
	}
	return profile, nil
}

func (m *Memory) Set(_ context.Context, profile model.PublicProfile) error {
	m.store.SetDefault(key(profile.Username), profile)
	return nil
}

func (m *Memory) Delete(_ context.Context, username string) error {
	m.store.Delete(key(username))
	return nil
}

func (m *Memory) Len() int {
	return m.store.ItemCount()
}
