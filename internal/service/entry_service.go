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

type entryStore interface {
	Create(ctx context.Context, e model.Entry) error
	FindByID(ctx context.Context, id string) (model.Entry, error)
	List(ctx context.Context) ([]model.Entry, error)
	Delete(ctx context.Context, id string) error
}

type EntryService struct {
	entries entryStore
	bus     event.Bus
	now     func() time.Time
}

func NewEntryService(entries entryStore, bus event.Bus) *EntryService {
	return &EntryService{entries: entries, bus: bus, now: time.Now}
}

// Create stores a new entry. Author fields always come from the verified
// claims and the timestamp from the server clock.
func (s *EntryService) Create(ctx context.Context, claims model.AuthClaims, req model.CreateEntryRequest) (string, error) {
	entry, err := validateEntry(req)
	if err != nil {
		return "", err
	}

	entry.ID = uuid.NewString()
	entry.Author = claims.Username
	entry.AuthorID = claims.UserID
	entry.Timestamp = s.now().UTC()

	if err := s.entries.Create(ctx, entry); err != nil {
		return "", err
	}

	s.bus.Publish(event.Event{Type: event.TypeEntryCreated, Subject: entry.ID, ActorID: claims.UserID, Actor: claims.Username})
	return entry.ID, nil
}

func (s *EntryService) List(ctx context.Context) ([]model.Entry, error) {
	return s.entries.List(ctx)
}

// Delete removes an entry. Admins may remove any entry; everyone else only
// their own.
func (s *EntryService) Delete(ctx context.Context, claims model.AuthClaims, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apierror.Validation("entry id is required", "id")
	}

	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !claims.HasRole(model.RoleAdmin) && entry.AuthorID != claims.UserID {
		return apierror.Forbidden("only the author or an admin may delete this entry")
	}

	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(event.Event{Type: event.TypeEntryDeleted, Subject: id, ActorID: claims.UserID, Actor: claims.Username})
	return nil
}

func validateEntry(req model.CreateEntryRequest) (model.Entry, error) {
	if strings.TrimSpace(req.Entry) == "" {
		return model.Entry{}, apierror.Validation("entry is required", "entry")
	}

	switch req.Type {
	case "":
		return model.Entry{}, apierror.Validation("type is required", "type")
	case model.EntryTypeWord, model.EntryTypeSentence:
	default:
		return model.Entry{}, apierror.Validation("type must be word or sentence", "type")
	}

	categories := categorySet(req.Categories)
	if len(categories) == 0 {
		return model.Entry{}, apierror.Validation("at least one category is required", "categories")
	}

	// An empty variation list is valid; only an absent one is rejected.
	if req.Variation == nil {
		return model.Entry{}, apierror.Validation("variation is required", "variation")
	}

	return model.Entry{
		Entry:      req.Entry,
		Type:       req.Type,
		Categories: categories,
		Variation:  append([]string{}, req.Variation...),
	}, nil
}

// categorySet drops blank and repeated categories, keeping first-seen order.
func categorySet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
