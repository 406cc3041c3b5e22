// Package cache holds short-lived copies of public user profiles so feed and
// profile reads avoid a directory lookup per author. Every entry carries a
// TTL and is dropped explicitly when the owner logs in again.
package cache

import (
	"context"
	"strings"

	"go-entry-board/internal/model"
)

type ProfileCache interface {
	// Get returns model.ErrCacheMiss when no live entry exists.
	Get(ctx context.Context, username string) (model.PublicProfile, error)
	Set(ctx context.Context, profile model.PublicProfile) error
	Delete(ctx context.Context, username string) error
}

func key(username string) string {
	return "profile:" + strings.ToLower(strings.TrimSpace(username))
}
