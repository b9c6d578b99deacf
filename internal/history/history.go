// internal/history/history.go
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxRecent is the largest number of entries Recent will return.
const MaxRecent = 100

// Entry is one completed search.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Term        string    `json:"search_term"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// Store records completed searches. It is write-mostly and never consulted by the search path.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// NopStore is used when no database is configured.
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error { return nil }

func (NopStore) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

var _ Store = NopStore{}
