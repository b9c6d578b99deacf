// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "github-navigator/internal/errors"
	"github-navigator/internal/model"
)

const (
	// commitsURLPlaceholder is the URI template suffix GitHub puts on commits_url.
	commitsURLPlaceholder = "{/sha}"
	// latestCommitQuery asks for the newest commit only; GitHub lists commits newest first.
	latestCommitQuery = "?per_page=1"
)

// Client is a wrapper around the go-github client.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// A non-empty token is used to create an authenticated http.Client. A non-empty
// baseURL replaces https://api.github.com/ (GitHub Enterprise or a local fake).
func NewClient(token, baseURL string, logger *slog.Logger) (*Client, error) {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(hc)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url %q: %w", baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:     gh,
		logger: logger,
	}, nil
}

// SearchRepositories runs a repository search for term and returns at most limit
// repositories, newest first by creation time. LatestCommit is left empty.
// Every failure is reported as errors.ErrUpstream.
func (c *Client) SearchRepositories(ctx context.Context, term string, limit int) ([]model.Repository, error) {
	c.logger.Debug("Searching repositories", "search_term", term)

	result, _, err := c.gh.Search.Repositories(ctx, term, &github.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrUpstream, err)
	}
	if result.Repositories == nil {
		return nil, fmt.Errorf("%w: response has no items", custom_errors.ErrUpstream)
	}

	// Only created_at is needed to pick the newest items; the other fields are
	// checked on the items that are kept.
	type indexedItem struct {
		index int
		item  *github.Repository
	}
	items := make([]indexedItem, 0, len(result.Repositories))
	for i, item := range result.Repositories {
		if item == nil {
			return nil, fmt.Errorf("%w: %w", custom_errors.ErrUpstream, &custom_errors.MalformedItemError{Index: i, Field: "item"})
		}
		if item.CreatedAt == nil {
			return nil, fmt.Errorf("%w: %w", custom_errors.ErrUpstream, &custom_errors.MalformedItemError{Index: i, Field: "created_at"})
		}
		items = append(items, indexedItem{index: i, item: item})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].item.GetCreatedAt().After(items[j].item.GetCreatedAt().Time)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	repos := make([]model.Repository, 0, len(items))
	for _, it := range items {
		repo, err := toInternalRepository(it.index, it.item)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", custom_errors.ErrUpstream, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// LatestCommit fetches the newest commit from a resolved commits URL.
// It reports false when the request fails or the repository has no commits;
// callers treat both the same way.
func (c *Client) LatestCommit(ctx context.Context, commitsURL string) (model.Commit, bool) {
	req, err := c.gh.NewRequest(http.MethodGet, commitsURL, nil)
	if err != nil {
		c.logger.Debug("Invalid commits url", "url", commitsURL, "error", err)
		return model.Commit{}, false
	}

	var commits []*github.RepositoryCommit
	if _, err := c.gh.Do(ctx, req, &commits); err != nil {
		c.logger.Debug("Failed to fetch latest commit", "url", commitsURL, "error", err)
		return model.Commit{}, false
	}
	if len(commits) == 0 {
		return model.Commit{}, false
	}
	return toInternalCommit(commits[0]), true
}

// ResolveCommitsURL turns the commits_url template of a search item into a URL
// that returns only the newest commit.
func ResolveCommitsURL(template string) string {
	if strings.Contains(template, commitsURLPlaceholder) {
		return strings.Replace(template, commitsURLPlaceholder, latestCommitQuery, 1)
	}

	u, err := url.Parse(template)
	if err != nil {
		return template
	}
	q := u.Query()
	q.Set("per_page", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

// toInternalRepository translates a search item to our internal model.Repository.
func toInternalRepository(index int, r *github.Repository) (model.Repository, error) {
	switch {
	case r == nil:
		return model.Repository{}, &custom_errors.MalformedItemError{Index: index, Field: "item"}
	case r.FullName == nil:
		return model.Repository{}, &custom_errors.MalformedItemError{Index: index, Field: "full_name"}
	case r.CreatedAt == nil:
		return model.Repository{}, &custom_errors.MalformedItemError{Index: index, Field: "created_at"}
	case r.Owner == nil:
		return model.Repository{}, &custom_errors.MalformedItemError{Index: index, Field: "owner"}
	case r.CommitsURL == nil:
		return model.Repository{}, &custom_errors.MalformedItemError{Index: index, Field: "commits_url"}
	}

	return model.Repository{
		FullName:  r.GetFullName(),
		CreatedAt: r.GetCreatedAt().Time.UTC(),
		Owner: model.Owner{
			Username:   r.GetOwner().GetLogin(),
			ProfileURL: r.GetOwner().GetHTMLURL(),
			AvatarURL:  r.GetOwner().GetAvatarURL(),
		},
		CommitsURL: ResolveCommitsURL(r.GetCommitsURL()),
	}, nil
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:        c.GetSHA(),
		Message:    c.GetCommit().GetMessage(),
		AuthorName: c.GetCommit().GetAuthor().GetName(),
	}
}
