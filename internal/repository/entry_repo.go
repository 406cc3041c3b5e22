package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

type EntryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func (r *EntryRepository) Create(ctx context.Context, e model.Entry) error {
	variation := e.Variation
	if variation == nil {
		variation = []string{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO entries (id, entry, type, categories, variation, author, author_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Entry, e.Type, e.Categories, variation, e.Author, e.AuthorID, e.Timestamp)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

func (r *EntryRepository) FindByID(ctx context.Context, id string) (model.Entry, error) {
	var e model.Entry
	err := r.pool.QueryRow(ctx,
		`SELECT id, entry, type, categories, variation, author, author_id, created_at
		 FROM entries WHERE id = $1`, id).
		Scan(&e.ID, &e.Entry, &e.Type, &e.Categories, &e.Variation, &e.Author, &e.AuthorID, &e.Timestamp)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Entry{}, apierror.NotFound("entry", id)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("find entry: %w", err)
	}
	return e, nil
}

func (r *EntryRepository) List(ctx context.Context) ([]model.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, entry, type, categories, variation, author, author_id, created_at
		 FROM entries ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.Entry, &e.Type, &e.Categories, &e.Variation, &e.Author, &e.AuthorID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("entry", id)
	}
	return nil
}
