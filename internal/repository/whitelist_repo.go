package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

const uniqueViolation = "23505"

type WhitelistRepository struct {
	pool *pgxpool.Pool
}

func NewWhitelistRepository(pool *pgxpool.Pool) *WhitelistRepository {
	return &WhitelistRepository{pool: pool}
}

func (r *WhitelistRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM whitelist WHERE lower(username) = lower($1))`,
		strings.TrimSpace(username)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check whitelist: %w", err)
	}
	return exists, nil
}

func (r *WhitelistRepository) Create(ctx context.Context, e model.WhitelistEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO whitelist (id, username, added_at) VALUES ($1, $2, $3)`,
		e.ID, e.Username, e.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apierror.Conflict("username already whitelisted", e.Username)
		}
		return fmt.Errorf("create whitelist entry: %w", err)
	}
	return nil
}

func (r *WhitelistRepository) List(ctx context.Context) ([]model.WhitelistEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, added_at FROM whitelist ORDER BY added_at, username`)
	if err != nil {
		return nil, fmt.Errorf("list whitelist: %w", err)
	}
	defer rows.Close()

	entries := make([]model.WhitelistEntry, 0)
	for rows.Next() {
		var e model.WhitelistEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan whitelist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *WhitelistRepository) Delete(ctx context.Context, username string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM whitelist WHERE lower(username) = lower($1)`, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("delete whitelist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("whitelist entry", username)
	}
	return nil
}
