package models

import "time"

// Commit is a single agent-authored commit as produced by a repository scan.
type Commit struct {
	Hash         string
	HashShort    string
	Author       string
	Email        string
	Date         time.Time
	Message      string
	Body         string
	Repo         string
	RepoPath     string
	Branch       string
	FilesChanged int
	Insertions   int
	Deletions    int
}

// Session is a run of commits by one author on one branch of one repository
// with no internal gap above the grouping threshold. Commits are ordered by
// date ascending.
type Session struct {
	ID           string
	Repo         string
	RepoPath     string
	Branch       string
	Author       string
	StartTime    time.Time
	EndTime      time.Time
	Commits      []Commit
	FilesChanged int
	Insertions   int
	Deletions    int

	// PRNumber is zero when no commit in the session references a pull request.
	PRNumber int
	PRTitle  string
}

// HasPR reports whether a pull request reference was detected.
func (s Session) HasPR() bool {
	return s.PRNumber > 0
}

func (s Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// FirstMessage returns the subject of the earliest commit, or "" for an empty session.
func (s Session) FirstMessage() string {
	if len(s.Commits) == 0 {
		return ""
	}
	return s.Commits[0].Message
}

// DiffStats summarizes the aggregate change across a session's commit range.
type DiffStats struct {
	FilesChanged []string
	Insertions   int
	Deletions    int
	Summary      string
}

// ShortStat is the compact per-range change summary reported by git.
type ShortStat struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}
