// internal/history/postgres.go
package history

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps the search history in the search_history table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store on top of a pool or connection.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertEntry = `
INSERT INTO search_history (id, search_term, result_count, searched_at)
VALUES ($1, $2, $3, $4)`

// Record inserts e, filling in ID and SearchedAt when they are zero.
func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.SearchedAt.IsZero() {
		e.SearchedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, insertEntry,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		e.Term,
		int32(e.ResultCount),
		e.SearchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search history: %w", err)
	}
	return nil
}

const selectRecent = `
SELECT id, search_term, result_count, searched_at
FROM search_history
ORDER BY searched_at DESC
LIMIT $1`

// Recent returns the latest limit entries, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 || limit > MaxRecent {
		return nil, fmt.Errorf("recent search history: limit %d out of range", limit)
	}

	rows, err := s.db.Query(ctx, selectRecent, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("query search history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			id    pgtype.UUID
			e     Entry
			count int32
		)
		if err := rows.Scan(&id, &e.Term, &count, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("scan search history: %w", err)
		}
		e.ID = uuid.UUID(id.Bytes)
		e.ResultCount = int(count)
		e.SearchedAt = e.SearchedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read search history: %w", err)
	}
	return entries, nil
}

// Migrate applies the embedded schema migrations to the database at dbURL.
func Migrate(dbURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
