package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gnomegl/drift/internal/clock"
	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/git"
	"github.com/gnomegl/drift/internal/models"
)

var errFake = errors.New("fake failure")

type fakeRepo struct {
	entries   []git.LogEntry
	logErr    error
	current   string
	branches  map[string][]string
	branchErr map[string]bool
	stats     map[string]models.ShortStat
	statErr   map[string]bool
}

type fakeSource struct {
	repos map[string]*fakeRepo

	mu      sync.Mutex
	logOpts []git.LogOptions
}

func (f *fakeSource) IsRepository(path string) bool {
	_, ok := f.repos[path]
	return ok
}

func (f *fakeSource) Log(_ context.Context, dir string, opts git.LogOptions) ([]git.LogEntry, error) {
	f.mu.Lock()
	f.logOpts = append(f.logOpts, opts)
	f.mu.Unlock()

	r := f.repos[dir]
	if r.logErr != nil {
		return nil, r.logErr
	}
	return r.entries, nil
}

func (f *fakeSource) CurrentBranch(_ context.Context, dir string) (string, error) {
	if r := f.repos[dir]; r.current != "" {
		return r.current, nil
	}
	return "", errFake
}

func (f *fakeSource) BranchesContaining(_ context.Context, dir, hash string) ([]string, error) {
	r := f.repos[dir]
	if r.branchErr[hash] {
		return nil, errFake
	}
	return r.branches[hash], nil
}

func (f *fakeSource) Shortstat(_ context.Context, dir, rangeExpr string) (models.ShortStat, error) {
	r := f.repos[dir]
	hash := rangeExpr[len(rangeExpr)-40:]
	if r.statErr[hash] {
		return models.ShortStat{}, errFake
	}
	return r.stats[hash], nil
}

func hash(c byte) string {
	b := make([]byte, 40)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestScanner(t *testing.T, source Source) *Scanner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock = clock.Fake(now)
	s, err := New(source, config.Default(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestScanRepoClassifiesAndEnriches(t *testing.T) {
	source := &fakeSource{repos: map[string]*fakeRepo{
		"/src/api": {
			current: "main",
			entries: []git.LogEntry{
				{Hash: hash('c'), AuthorName: "claude", AuthorEmail: "noreply@anthropic.com", Date: now.Add(-time.Hour), Subject: "third"},
				{Hash: hash('h'), AuthorName: "alice", AuthorEmail: "alice@example.com", Date: now.Add(-90 * time.Minute), Subject: "human work"},
				{Hash: hash('b'), AuthorName: "alice", AuthorEmail: "alice@example.com", Date: now.Add(-2 * time.Hour), Subject: "second", Body: "Co-Authored-By: Claude <noreply@anthropic.com>"},
				{Hash: hash('a'), AuthorName: "claude", AuthorEmail: "noreply@anthropic.com", Date: now.Add(-3 * time.Hour), Subject: "first"},
			},
			branches:  map[string][]string{hash('c'): {"main", "feature/x"}},
			branchErr: map[string]bool{hash('a'): true},
			stats: map[string]models.ShortStat{
				hash('c'): {FilesChanged: 2, Insertions: 10, Deletions: 1},
				hash('b'): {FilesChanged: 1, Insertions: 3},
			},
			statErr: map[string]bool{hash('a'): true},
		},
	}}
	s := newTestScanner(t, source)

	commits, err := s.ScanRepo(context.Background(), config.Repo{Path: "/src/api", Name: "api"}, Options{})
	if err != nil {
		t.Fatalf("ScanRepo: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("got %d commits, want 3", len(commits))
	}

	wantOrder := []string{hash('c'), hash('b'), hash('a')}
	for i, c := range commits {
		if c.Hash != wantOrder[i] {
			t.Errorf("commits[%d] = %s, want %s", i, c.HashShort, wantOrder[i][:7])
		}
		if c.Repo != "api" || c.RepoPath != "/src/api" {
			t.Errorf("commits[%d] repo = %q %q", i, c.Repo, c.RepoPath)
		}
	}

	if commits[0].Branch != "feature/x" {
		t.Errorf("preferred branch = %q, want feature/x", commits[0].Branch)
	}
	if commits[0].HashShort != "ccccccc" || commits[0].Insertions != 10 || commits[0].FilesChanged != 2 {
		t.Errorf("enrichment = %+v", commits[0])
	}
	if commits[1].Branch != "main" {
		t.Errorf("empty branch list should fall back to current branch, got %q", commits[1].Branch)
	}
	if commits[2].Branch != git.UnknownBranch {
		t.Errorf("failed branch lookup = %q, want unknown", commits[2].Branch)
	}
	if commits[2].FilesChanged != 0 || commits[2].Insertions != 0 || commits[2].Deletions != 0 {
		t.Errorf("failed stats should be zero, got %+v", commits[2])
	}

	if len(source.logOpts) != 1 {
		t.Fatalf("log called %d times", len(source.logOpts))
	}
	opts := source.logOpts[0]
	if !opts.AllBranches {
		t.Error("log should include all branches")
	}
	if want := now.Add(-12 * time.Hour); !opts.Since.Equal(want) {
		t.Errorf("since = %v, want %v", opts.Since, want)
	}
}

func TestScanRepoAuthorFilterBypassesClassification(t *testing.T) {
	source := &fakeSource{repos: map[string]*fakeRepo{
		"/src/api": {
			current: "main",
			entries: []git.LogEntry{
				{Hash: hash('a'), AuthorName: "Alice", AuthorEmail: "alice@example.com", Date: now, Subject: "plain human commit"},
				{Hash: hash('b'), AuthorName: "claude", AuthorEmail: "noreply@anthropic.com", Date: now, Subject: "agent commit"},
			},
		},
	}}
	s := newTestScanner(t, source)

	commits, err := s.ScanRepo(context.Background(), config.Repo{Path: "/src/api", Name: "api"}, Options{Author: "alice", Since: "2d"})
	if err != nil {
		t.Fatalf("ScanRepo: %v", err)
	}
	if len(commits) != 1 || commits[0].Author != "Alice" {
		t.Fatalf("commits = %+v", commits)
	}
	if got := source.logOpts[0]; got.Author != "alice" || !got.Since.Equal(now.Add(-48*time.Hour)) {
		t.Errorf("log options = %+v", got)
	}
}

func TestScanRepoNotRepository(t *testing.T) {
	s := newTestScanner(t, &fakeSource{repos: map[string]*fakeRepo{}})

	_, err := s.ScanRepo(context.Background(), config.Repo{Path: "/nowhere", Name: "x"}, Options{})
	if !errors.Is(err, git.ErrNotRepository) {
		t.Fatalf("err = %v, want ErrNotRepository", err)
	}
}

func TestScanAllIsolatesFailures(t *testing.T) {
	source := &fakeSource{repos: map[string]*fakeRepo{
		"/src/api": {
			current: "main",
			entries: []git.LogEntry{
				{Hash: hash('a'), AuthorName: "claude", Date: now.Add(-3 * time.Hour), Subject: "api old"},
			},
		},
		"/src/web": {
			current: "main",
			entries: []git.LogEntry{
				{Hash: hash('b'), AuthorName: "copilot", Date: now.Add(-time.Hour), Subject: "web new"},
			},
		},
		"/src/broken": {logErr: errFake},
	}}
	s := newTestScanner(t, source)

	repos := []config.Repo{
		{Path: "/src/api", Name: "api"},
		{Path: "/src/broken", Name: "broken"},
		{Path: "/src/missing", Name: "missing"},
		{Path: "/src/web", Name: "web"},
	}
	commits, results := s.ScanAll(context.Background(), repos, Options{})

	if len(commits) != 2 {
		t.Fatalf("got %d commits, want 2", len(commits))
	}
	if commits[0].Repo != "web" || commits[1].Repo != "api" {
		t.Errorf("commits not newest first: %s, %s", commits[0].Repo, commits[1].Repo)
	}

	if len(results) != len(repos) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Repo.Name != repos[i].Name {
			t.Errorf("results[%d] = %s, want %s", i, r.Repo.Name, repos[i].Name)
		}
	}
	if results[1].Err == nil || results[2].Err == nil {
		t.Error("failing repos should report errors")
	}
	if results[0].Err != nil || results[3].Err != nil {
		t.Error("healthy repos should not report errors")
	}
}

func TestScanAllRepoFilter(t *testing.T) {
	source := &fakeSource{repos: map[string]*fakeRepo{
		"/src/api": {current: "main", entries: []git.LogEntry{{Hash: hash('a'), AuthorName: "claude", Date: now}}},
		"/src/web": {current: "main", entries: []git.LogEntry{{Hash: hash('b'), AuthorName: "claude", Date: now}}},
	}}
	s := newTestScanner(t, source)

	repos := []config.Repo{{Path: "/src/api", Name: "api"}, {Path: "/src/web", Name: "Web"}}
	commits, results := s.ScanAll(context.Background(), repos, Options{Repo: "web"})
	if len(results) != 1 || len(commits) != 1 || commits[0].Repo != "Web" {
		t.Fatalf("results = %+v, commits = %+v", results, commits)
	}

	commits, results = s.ScanAll(context.Background(), repos, Options{Repo: "nope"})
	if len(results) != 0 || len(commits) != 0 {
		t.Fatalf("unknown repo should scan nothing, got %d commits", len(commits))
	}
}
