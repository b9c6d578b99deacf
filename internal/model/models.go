// internal/model/models.go
package model

import "time"

// Owner describes the account that owns a repository.
type Owner struct {
	Username   string `json:"username"`
	ProfileURL string `json:"profile_url"`
	AvatarURL  string `json:"avatar_url"`
}

// Commit is the most recent commit of a repository.
type Commit struct {
	SHA        string `json:"sha"`
	Message    string `json:"message"`
	AuthorName string `json:"author_name"`
}

// IsZero reports whether no commit information is available.
func (c Commit) IsZero() bool {
	return c == Commit{}
}

// Repository is a search result enriched with its latest commit.
// LatestCommit stays zero-valued when the commit could not be fetched.
type Repository struct {
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	Owner        Owner     `json:"owner"`
	LatestCommit Commit    `json:"latest_commit"`
	CommitsURL   string    `json:"-"`
}
