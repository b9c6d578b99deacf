// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	custom_errors "github-navigator/internal/errors"
	"github-navigator/internal/history"
	"github-navigator/internal/model"
)

// MockSearcher is a mock of the Searcher interface.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, term string) ([]model.Repository, error) {
	args := m.Called(ctx, term)
	repos, _ := args.Get(0).([]model.Repository)
	return repos, args.Error(1)
}

// MockStore is a mock of the history.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Record(ctx context.Context, e history.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockStore) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]history.Entry)
	return entries, args.Error(1)
}

func sampleRepos() []model.Repository {
	return []model.Repository{
		{
			FullName:  "octo/<b>cat</b>",
			CreatedAt: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
			Owner: model.Owner{
				Username:   "octo",
				ProfileURL: "https://github.com/octo",
				AvatarURL:  "https://avatars.example.com/octo",
			},
			LatestCommit: model.Commit{SHA: "abc123", Message: "<script>alert(1)</script>", AuthorName: "Mona"},
		},
		{
			FullName:  "empty/repo",
			CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Owner:     model.Owner{Username: "empty"},
		},
	}
}

func doRequest(t *testing.T, handler http.Handler, target string) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestHandler_NavigatorPage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns 400 without a search term and does not search", func(t *testing.T) {
		for _, target := range []string{"/navigator/", "/navigator/?search_term=", "/navigator"} {
			nav := new(MockSearcher)
			router := NewRouter(nav, nil, logger)

			res, body := doRequest(t, router, target)

			assert.Equal(t, http.StatusBadRequest, res.StatusCode, target)
			assert.Equal(t, msgMissingSearchTerm, body)
			assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "text/plain"))
			nav.AssertNotCalled(t, "Search")
		}
	})

	t.Run("returns 500 when github fails", func(t *testing.T) {
		nav := new(MockSearcher)
		nav.On("Search", mock.Anything, "foo").Return(nil, fmt.Errorf("%w: status 503", custom_errors.ErrUpstream)).Once()
		router := NewRouter(nav, nil, logger)

		res, body := doRequest(t, router, "/navigator/?search_term=foo")

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Equal(t, msgUpstream, body)
		nav.AssertExpectations(t)
	})

	t.Run("renders the repositories with escaped content", func(t *testing.T) {
		nav := new(MockSearcher)
		nav.On("Search", mock.Anything, "foo bar").Return(sampleRepos(), nil).Once()
		router := NewRouter(nav, nil, logger)

		res, body := doRequest(t, router, "/navigator/?search_term=foo+bar")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, body, "foo bar")
		assert.Contains(t, body, "octo/&lt;b&gt;cat&lt;/b&gt;")
		assert.Contains(t, body, "2024-02-03 04:05:06 UTC")
		assert.Contains(t, body, "https://avatars.example.com/octo")
		assert.Contains(t, body, "abc123")
		assert.Contains(t, body, "Mona")
		assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
		assert.NotContains(t, body, "<script>")
		assert.Contains(t, body, "No commits")
		assert.Less(t, strings.Index(body, "octo/"), strings.Index(body, "empty/repo"))
	})

	t.Run("renders an empty result", func(t *testing.T) {
		nav := new(MockSearcher)
		nav.On("Search", mock.Anything, "nothing").Return([]model.Repository{}, nil).Once()
		router := NewRouter(nav, nil, logger)

		res, body := doRequest(t, router, "/navigator?search_term=nothing")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "No repositories found.")
	})
}

func TestHandler_Search(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns the repositories as json", func(t *testing.T) {
		nav := new(MockSearcher)
		nav.On("Search", mock.Anything, "foo").Return(sampleRepos(), nil).Once()
		router := NewRouter(nav, nil, logger)

		res, body := doRequest(t, router, "/v1/search?search_term=foo")

		require.Equal(t, http.StatusOK, res.StatusCode)
		var got struct {
			SearchTerm   string           `json:"search_term"`
			Repositories []map[string]any `json:"repositories"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &got))
		assert.Equal(t, "foo", got.SearchTerm)
		require.Len(t, got.Repositories, 2)
		assert.Equal(t, "octo/<b>cat</b>", got.Repositories[0]["full_name"])
		assert.Equal(t, "2024-02-03T04:05:06Z", got.Repositories[0]["created_at"])
		assert.NotContains(t, got.Repositories[0], "CommitsURL")
		emptyCommit, ok := got.Repositories[1]["latest_commit"].(map[string]any)
		require.True(t, ok, "latest_commit is always present")
		assert.Equal(t, "", emptyCommit["sha"])
	})

	t.Run("returns an empty array rather than null", func(t *testing.T) {
		nav := new(MockSearcher)
		nav.On("Search", mock.Anything, "foo").Return(nil, nil).Once()
		router := NewRouter(nav, nil, logger)

		_, body := doRequest(t, router, "/v1/search?search_term=foo")

		assert.JSONEq(t, `{"search_term": "foo", "repositories": []}`, body)
	})

	t.Run("maps errors to status codes", func(t *testing.T) {
		cases := map[string]struct {
			target string
			err    error
			code   int
		}{
			"missing term":     {"/v1/search", nil, http.StatusBadRequest},
			"empty term error": {"/v1/search?search_term=x", custom_errors.ErrEmptySearchTerm, http.StatusBadRequest},
			"upstream failure": {"/v1/search?search_term=x", custom_errors.ErrUpstream, http.StatusInternalServerError},
			"unexpected error": {"/v1/search?search_term=x", errors.New("boom"), http.StatusInternalServerError},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				nav := new(MockSearcher)
				if tc.err != nil {
					nav.On("Search", mock.Anything, "x").Return(nil, tc.err).Once()
				}
				router := NewRouter(nav, nil, logger)

				res, body := doRequest(t, router, tc.target)

				assert.Equal(t, tc.code, res.StatusCode)
				assert.Contains(t, body, `"error"`)
			})
		}
	})
}

func TestHandler_RecentSearches(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("uses the default limit", func(t *testing.T) {
		store := new(MockStore)
		entry := history.Entry{ID: uuid.New(), Term: "foo", ResultCount: 5, SearchedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		store.On("Recent", mock.Anything, defaultHistoryLimit).Return([]history.Entry{entry}, nil).Once()
		router := NewRouter(new(MockSearcher), store, logger)

		res, body := doRequest(t, router, "/v1/history")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, `"search_term":"foo"`)
		assert.Contains(t, body, entry.ID.String())
		store.AssertExpectations(t)
	})

	t.Run("rejects an invalid limit", func(t *testing.T) {
		for _, limit := range []string{"0", "-3", "abc", "101"} {
			store := new(MockStore)
			router := NewRouter(new(MockSearcher), store, logger)

			res, _ := doRequest(t, router, "/v1/history?limit="+limit)

			assert.Equal(t, http.StatusBadRequest, res.StatusCode, limit)
			store.AssertNotCalled(t, "Recent")
		}
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("Recent", mock.Anything, 3).Return(nil, errors.New("db down")).Once()
		router := NewRouter(new(MockSearcher), store, logger)

		res, _ := doRequest(t, router, "/v1/history?limit=3")

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	})

	t.Run("returns an empty list when history is disabled", func(t *testing.T) {
		router := NewRouter(new(MockSearcher), nil, logger)

		res, body := doRequest(t, router, "/v1/history")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.JSONEq(t, `[]`, body)
	})
}

func TestHandler_Health(t *testing.T) {
	router := NewRouter(new(MockSearcher), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, body := doRequest(t, router, "/health")

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
