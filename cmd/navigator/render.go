// cmd/navigator/render.go
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github-navigator/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	shaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// renderRepositories formats a search result for the terminal.
func renderRepositories(term string, repos []model.Repository) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Newest repositories for %q", term)))
	b.WriteString("\n\n")

	if len(repos) == 0 {
		b.WriteString(dimStyle.Render("No repositories found."))
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range repos {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, nameStyle.Render(r.FullName),
			dimStyle.Render("created "+r.CreatedAt.Format("2006-01-02 15:04:05 UTC")))
		fmt.Fprintf(&b, "   owner: %s %s\n", r.Owner.Username, dimStyle.Render(r.Owner.ProfileURL))
		if r.LatestCommit.IsZero() {
			fmt.Fprintf(&b, "   %s\n", dimStyle.Render("No commits"))
			continue
		}
		fmt.Fprintf(&b, "   %s %s (%s)\n", shaStyle.Render(shortSHA(r.LatestCommit.SHA)),
			firstLine(r.LatestCommit.Message), r.LatestCommit.AuthorName)
	}
	return b.String()
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
