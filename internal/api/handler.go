// internal/api/handler.go
package api

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	custom_errors "github-navigator/internal/errors"
	"github-navigator/internal/history"
	"github-navigator/internal/model"
)

const (
	msgMissingSearchTerm = "search_term parameter is missing or incorrect."
	msgUpstream          = "Incorrect response received from Github API."

	defaultHistoryLimit = 10
)

//go:embed templates/navigator.html
var templatesFS embed.FS

var navigatorPage = template.Must(template.ParseFS(templatesFS, "templates/navigator.html"))

// Searcher runs a repository search with commit enrichment.
type Searcher interface {
	Search(ctx context.Context, term string) ([]model.Repository, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	navigator Searcher
	history   history.Store
	logger    *slog.Logger
}

// searchResponse is the JSON body of a successful search.
type searchResponse struct {
	SearchTerm   string             `json:"search_term"`
	Repositories []model.Repository `json:"repositories"`
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(nav Searcher, store history.Store, logger *slog.Logger) http.Handler {
	if store == nil {
		store = history.NopStore{}
	}
	h := &Handler{
		navigator: nav,
		history:   store,
		logger:    logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)
	r.Get("/navigator", h.navigatorPage)
	r.Get("/navigator/", h.navigatorPage)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/history", h.recentSearches)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// navigatorPage renders the five newest repositories for a search term as HTML.
// GET /navigator/?search_term=foo
func (h *Handler) navigatorPage(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search_term")
	if term == "" {
		respondWithText(w, http.StatusBadRequest, msgMissingSearchTerm)
		return
	}

	repos, err := h.navigator.Search(r.Context(), term)
	if err != nil {
		code, message := h.searchFailure(err)
		respondWithText(w, code, message)
		return
	}

	var buf bytes.Buffer
	if err := navigatorPage.Execute(&buf, searchResponse{SearchTerm: term, Repositories: repos}); err != nil {
		h.logger.Error("Failed to render navigator page", "error", err)
		respondWithText(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// search returns the same result as navigatorPage as JSON.
// GET /v1/search?search_term=foo
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search_term")
	if term == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingSearchTerm)
		return
	}

	repos, err := h.navigator.Search(r.Context(), term)
	if err != nil {
		code, message := h.searchFailure(err)
		respondWithError(w, code, message)
		return
	}
	if repos == nil {
		repos = []model.Repository{}
	}

	respondWithJSON(w, http.StatusOK, searchResponse{SearchTerm: term, Repositories: repos})
}

// recentSearches lists the latest recorded searches.
// GET /v1/history?limit=N
func (h *Handler) recentSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read search history", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// searchFailure maps a search error to a status code and a client message.
func (h *Handler) searchFailure(err error) (int, string) {
	if errors.Is(err, custom_errors.ErrEmptySearchTerm) {
		return http.StatusBadRequest, msgMissingSearchTerm
	}
	if !errors.Is(err, custom_errors.ErrUpstream) {
		h.logger.Error("Unexpected search failure", "error", err)
	}
	return http.StatusInternalServerError, msgUpstream
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > history.MaxRecent {
		return 0, &custom_errors.InvalidLimitError{Value: raw, Max: history.MaxRecent}
	}
	return limit, nil
}
