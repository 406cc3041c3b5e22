package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-entry-board/internal/cache"
	"go-entry-board/internal/model"
	"go-entry-board/internal/repository"
	"go-entry-board/pkg/apierror"
)

func TestUserServiceProfileUsesCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	profiles := cache.NewMemory(time.Minute)
	svc := NewUserService(users, profiles)

	now := time.Now().UTC()
	require.NoError(t, users.Create(ctx, model.User{ID: "1001", Username: "alice", Avatar: "a1", JoinedAt: now, UpdatedAt: now}))

	got, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "a1", got.Avatar)
	require.Equal(t, 1, profiles.Len())

	require.NoError(t, users.UpdateProfile(ctx, model.User{ID: "1001", Username: "alice", Avatar: "a2", UpdatedAt: now}))
	got, err = svc.Profile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "a1", got.Avatar, "cached value is served until invalidated")

	_, err = svc.Profile(ctx, "ghost")
	requireCode(t, err, apierror.CodeNotFound, http.StatusNotFound)
}

func TestFeedPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	entries := repository.NewMemoryEntryRepository()
	users := repository.NewMemoryUserRepository()
	now := time.Now().UTC()
	require.NoError(t, users.Create(ctx, model.User{ID: "1001", Username: "alice", Avatar: "a1", JoinedAt: now, UpdatedAt: now}))

	for i := 0; i < 5; i++ {
		require.NoError(t, entries.Create(ctx, model.Entry{
			ID:         fmt.Sprintf("e%d", i),
			Entry:      "entry",
			Type:       model.EntryTypeWord,
			Categories: []string{"c"},
			Author:     "alice",
			AuthorID:   "1001",
			Timestamp:  now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, entries.Create(ctx, model.Entry{ID: "orphan", Author: "gone", Timestamp: now.Add(-time.Hour)}))

	svc := NewFeedService(entries, NewUserService(users, cache.NewMemory(time.Minute)))

	page, err := svc.Page(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "e4", page.Items[0].ID)
	require.Equal(t, "a1", page.Items[0].AuthorAvatar)
	require.Equal(t, model.Meta{Page: 1, Limit: 2, Total: 6, TotalPages: 3}, page.Meta)

	last, err := svc.Page(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 2)
	require.Equal(t, "orphan", last.Items[1].ID)
	require.Empty(t, last.Items[1].AuthorAvatar)

	beyond, err := svc.Page(ctx, 10, 2)
	require.NoError(t, err)
	require.Empty(t, beyond.Items)

	huge, err := svc.Page(ctx, math.MaxInt/50, 100)
	require.NoError(t, err)
	require.Empty(t, huge.Items)
	require.Equal(t, 6, huge.Meta.Total)

	maxed, err := svc.Page(ctx, math.MaxInt, MaxFeedLimit)
	require.NoError(t, err)
	require.Empty(t, maxed.Items)

	clamped, err := svc.Page(ctx, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, clamped.Meta.Page)
	require.Equal(t, MaxFeedLimit, clamped.Meta.Limit)
}
