package service

import (
	"context"

	"go-entry-board/internal/model"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

type entryLister interface {
	List(ctx context.Context) ([]model.Entry, error)
}

type profileLookup interface {
	Profile(ctx context.Context, username string) (model.PublicProfile, error)
}

type FeedService struct {
	entries  entryLister
	profiles profileLookup
}

func NewFeedService(entries entryLister, profiles profileLookup) *FeedService {
	return &FeedService{entries: entries, profiles: profiles}
}

// Page slices the newest-first entry list. The store itself stays
// unpaginated; page and limit are clamped into range.
func (s *FeedService) Page(ctx context.Context, page int, limit int) (model.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	entries, err := s.entries.List(ctx)
	if err != nil {
		return model.FeedPage{}, err
	}

	// Compare in page units so a huge page number cannot overflow the offset.
	start := len(entries)
	if page-1 <= len(entries)/limit {
		start = min((page-1)*limit, len(entries))
	}
	end := min(start+limit, len(entries))

	avatars := map[string]string{}
	items := make([]model.FeedItem, 0, end-start)
	for _, entry := range entries[start:end] {
		avatar, ok := avatars[entry.Author]
		if !ok {
			if profile, err := s.profiles.Profile(ctx, entry.Author); err == nil {
				avatar = profile.Avatar
			}
			avatars[entry.Author] = avatar
		}
		items = append(items, model.FeedItem{Entry: entry, AuthorAvatar: avatar})
	}

	return model.FeedPage{Items: items, Meta: model.NewMeta(page, limit, len(entries))}, nil
}
