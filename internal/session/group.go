// Package session turns a flat list of agent commits into work sessions.
package session

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gnomegl/drift/internal/models"
)

// DefaultGap is the largest pause between two commits of one session.
const DefaultGap = 30 * time.Minute

const maxBranchSlug = 20

var (
	prPattern       = regexp.MustCompile(`\(#(\d+)\)`)
	prSuffixPattern = regexp.MustCompile(`\s*\(#\d+\)`)
	repoSlugPattern = regexp.MustCompile(`[^a-z0-9]`)
	branchSlugChars = regexp.MustCompile(`[^A-Za-z0-9-]`)
)

type bucketKey struct {
	repo, branch, author string
}

// Group buckets commits by repository, branch and author and splits each
// bucket wherever two consecutive commits are more than gap apart. A gap of
// exactly gap keeps the commits together. Sessions are returned newest first;
// commits inside a session are oldest first. The result does not depend on
// the order of the input.
func Group(commits []models.Commit, gap time.Duration) []models.Session {
	if len(commits) == 0 {
		return []models.Session{}
	}
	if gap <= 0 {
		gap = DefaultGap
	}

	sorted := make([]models.Commit, len(commits))
	copy(sorted, commits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Hash < sorted[j].Hash
	})

	var keys []bucketKey
	buckets := make(map[bucketKey][]models.Commit)
	for _, c := range sorted {
		key := bucketKey{repo: c.Repo, branch: c.Branch, author: c.Author}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], c)
	}

	var sessions []models.Session
	for _, key := range keys {
		bucket := buckets[key]
		start := 0
		for i := 1; i < len(bucket); i++ {
			if bucket[i].Date.Sub(bucket[i-1].Date) > gap {
				sessions = append(sessions, Build(bucket[start:i]))
				start = i
			}
		}
		sessions = append(sessions, Build(bucket[start:]))
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.After(b.StartTime)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Author < b.Author
	})
	return sessions
}

// Build derives a session from commits that already share a bucket and are
// ordered oldest first. commits must not be empty.
func Build(commits []models.Commit) models.Session {
	first := commits[0]
	last := commits[len(commits)-1]

	s := models.Session{
		ID:        ID(first.Repo, first.Branch, first.Date),
		Repo:      first.Repo,
		RepoPath:  first.RepoPath,
		Branch:    first.Branch,
		Author:    first.Author,
		StartTime: first.Date,
		EndTime:   last.Date,
		Commits:   append([]models.Commit(nil), commits...),
	}
	for _, c := range commits {
		// Files are summed per commit; the same path touched twice counts twice.
		s.FilesChanged += c.FilesChanged
		s.Insertions += c.Insertions
		s.Deletions += c.Deletions
	}
	s.PRNumber, s.PRTitle = DetectPR(commits)
	return s
}

// ID is <repo>-<branch>-<YYYYMMDD-HHmm>, with the repo lowercased to
// [a-z0-9], the branch reduced to [A-Za-z0-9-] and cut at 20 characters,
// and the start time in UTC.
func ID(repo, branch string, start time.Time) string {
	repoSlug := repoSlugPattern.ReplaceAllString(strings.ToLower(repo), "")
	branchSlug := branchSlugChars.ReplaceAllString(branch, "")
	if len(branchSlug) > maxBranchSlug {
		branchSlug = branchSlug[:maxBranchSlug]
	}
	return fmt.Sprintf("%s-%s-%s", repoSlug, branchSlug, start.UTC().Format("20060102-1504"))
}

// DetectPR returns the pull request number and title from the first commit
// whose subject carries a "(#N)" reference. Later references are ignored.
// "(#0)" and numbers that overflow int are not pull requests and are skipped.
func DetectPR(commits []models.Commit) (int, string) {
	for _, c := range commits {
		m := prPattern.FindStringSubmatch(c.Message)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil || number <= 0 {
			continue
		}
		title := c.Message
		if loc := prSuffixPattern.FindStringIndex(title); loc != nil {
			title = title[:loc[0]] + title[loc[1]:]
		}
		return number, strings.TrimSpace(title)
	}
	return 0, ""
}
