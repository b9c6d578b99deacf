// internal/navigator/navigator.go
package navigator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "github-navigator/internal/errors"
	"github-navigator/internal/history"
	"github-navigator/internal/model"
)

const (
	// DefaultMaxResults is the number of newest repositories kept per search.
	DefaultMaxResults = 5
	// DefaultConcurrency is the number of commit lookups in flight per search.
	DefaultConcurrency = 5

	defaultEnrichTimeout = 10 * time.Second
	defaultSearchTimeout = 15 * time.Second
	historyTimeout       = 5 * time.Second
)

// GitHub is the part of the GitHub API the navigator depends on.
type GitHub interface {
	SearchRepositories(ctx context.Context, term string, limit int) ([]model.Repository, error)
	LatestCommit(ctx context.Context, commitsURL string) (model.Commit, bool)
}

// Options tunes a Navigator. Zero values fall back to the defaults.
type Options struct {
	MaxResults    int
	Concurrency   int
	EnrichTimeout time.Duration
	SearchTimeout time.Duration
}

// Navigator searches repositories and enriches them with their latest commit.
type Navigator struct {
	gh            GitHub
	history       history.Store
	logger        *slog.Logger
	maxResults    int
	concurrency   int
	enrichTimeout time.Duration
	searchTimeout time.Duration
}

// New creates a new Navigator instance. A nil store disables search history.
func New(gh GitHub, store history.Store, logger *slog.Logger, opts Options) *Navigator {
	if store == nil {
		store = history.NopStore{}
	}
	n := &Navigator{
		gh:            gh,
		history:       store,
		logger:        logger,
		maxResults:    opts.MaxResults,
		concurrency:   opts.Concurrency,
		enrichTimeout: opts.EnrichTimeout,
		searchTimeout: opts.SearchTimeout,
	}
	if n.maxResults <= 0 {
		n.maxResults = DefaultMaxResults
	}
	if n.concurrency <= 0 {
		n.concurrency = DefaultConcurrency
	}
	if n.enrichTimeout <= 0 {
		n.enrichTimeout = defaultEnrichTimeout
	}
	if n.searchTimeout <= 0 {
		n.searchTimeout = defaultSearchTimeout
	}
	return n
}

// Search returns the newest repositories matching term, each with its latest
// commit when one could be fetched. It returns errors.ErrEmptySearchTerm for an
// empty term and errors.ErrUpstream when the search itself fails; commit lookups
// never fail a search.
func (n *Navigator) Search(ctx context.Context, term string) ([]model.Repository, error) {
	if term == "" {
		return nil, custom_errors.ErrEmptySearchTerm
	}
	logger := n.logger.With("search_term", term)

	searchCtx, cancel := context.WithTimeout(ctx, n.searchTimeout)
	found, err := n.gh.SearchRepositories(searchCtx, term, n.maxResults)
	cancel()
	if err != nil {
		logger.Error("Repository search failed", "error", err)
		return nil, err
	}

	repos := make([]model.Repository, len(found))
	var g errgroup.Group
	g.SetLimit(n.concurrency)

	// Each task owns repos[i] until Wait returns.
	for i := range found {
		repos[i] = found[i]
		g.Go(func() error {
			n.enrich(ctx, logger, &repos[i])
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("Search finished", "results", len(repos))
	n.record(ctx, logger, term, len(repos))
	return repos, nil
}

// enrich attaches the latest commit to repo. Failures leave LatestCommit empty.
func (n *Navigator) enrich(ctx context.Context, logger *slog.Logger, repo *model.Repository) {
	ctx, cancel := context.WithTimeout(ctx, n.enrichTimeout)
	defer cancel()

	commit, ok := n.gh.LatestCommit(ctx, repo.CommitsURL)
	if !ok {
		logger.Debug("No commit information available", "repo", repo.FullName)
		return
	}
	repo.LatestCommit = commit
}

func (n *Navigator) record(ctx context.Context, logger *slog.Logger, term string, count int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	err := n.history.Record(ctx, history.Entry{
		Term:        term,
		ResultCount: count,
		SearchedAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("Failed to record search history", "error", err)
	}
}
