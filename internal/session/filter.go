package session

import (
	"strings"

	"github.com/gnomegl/drift/internal/models"
)

// Filter keeps sessions of the named repo (exact, ignoring case) whose author
// contains author (ignoring case). Empty arguments match everything.
func Filter(sessions []models.Session, repo, author string) []models.Session {
	if repo == "" && author == "" {
		return sessions
	}
	author = strings.ToLower(author)

	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if repo != "" && !strings.EqualFold(s.Repo, repo) {
			continue
		}
		if author != "" && !strings.Contains(strings.ToLower(s.Author), author) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Summary aggregates a set of sessions for headers and briefings.
type Summary struct {
	Sessions     int
	Commits      int
	Repos        int
	Agents       int
	FilesChanged int
	Insertions   int
	Deletions    int
	PRs          int
}

func Totals(sessions []models.Session) Summary {
	repos := make(map[string]struct{})
	agents := make(map[string]struct{})

	sum := Summary{Sessions: len(sessions)}
	for _, s := range sessions {
		sum.Commits += len(s.Commits)
		sum.FilesChanged += s.FilesChanged
		sum.Insertions += s.Insertions
		sum.Deletions += s.Deletions
		if s.HasPR() {
			sum.PRs++
		}
		repos[s.Repo] = struct{}{}
		agents[s.Author] = struct{}{}
	}
	sum.Repos = len(repos)
	sum.Agents = len(agents)
	return sum
}

// ByRepo splits sessions per repository, keeping input order inside each
// group. The returned names are in order of first appearance.
func ByRepo(sessions []models.Session) ([]string, map[string][]models.Session) {
	var names []string
	groups := make(map[string][]models.Session)
	for _, s := range sessions {
		if _, ok := groups[s.Repo]; !ok {
			names = append(names, s.Repo)
		}
		groups[s.Repo] = append(groups[s.Repo], s)
	}
	return names, groups
}
