package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gnomegl/drift/internal/clock"
	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/scanner"
)

var t0 = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

// scriptedScanner returns polls[i] on its i-th call and repeats the last
// entry afterwards.
type scriptedScanner struct {
	mu    sync.Mutex
	polls [][]models.Commit
	calls int
	opts  []scanner.Options
	err   map[string]error
}

func (s *scriptedScanner) ScanAll(_ context.Context, repos []config.Repo, opts scanner.Options) ([]models.Commit, []scanner.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opts = append(s.opts, opts)
	i := s.calls
	if i >= len(s.polls) {
		i = len(s.polls) - 1
	}
	s.calls++

	results := make([]scanner.Result, len(repos))
	for j, r := range repos {
		results[j] = scanner.Result{Repo: r, Err: s.err[r.Name]}
	}
	return append([]models.Commit(nil), s.polls[i]...), results
}

type memoryStore struct {
	saved [][]models.Session
	err   error
}

func (m *memoryStore) Save(_ context.Context, sessions []models.Session) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, sessions)
	return nil
}

func agentCommit(hash string, offset time.Duration) models.Commit {
	return models.Commit{
		Hash:      hash,
		HashShort: hash,
		Author:    "claude",
		Repo:      "api",
		Branch:    "main",
		Date:      t0.Add(offset),
		Message:   "commit " + hash,
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Repos = []config.Repo{{Path: "/src/api", Name: "api"}, {Path: "/src/web", Name: "web"}}
	return cfg
}

func TestOrchestratorScanGroupsAndSaves(t *testing.T) {
	sc := &scriptedScanner{
		polls: [][]models.Commit{{
			agentCommit("c", 50*time.Minute),
			agentCommit("b", 10*time.Minute),
			agentCommit("a", 0),
		}},
		err: map[string]error{"web": errors.New("not a git repository")},
	}
	store := &memoryStore{}

	report, err := NewOrchestrator(sc, store, testConfig()).Scan(context.Background(), scanner.Options{Since: "1d"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Commits != 3 || len(report.Sessions) != 2 {
		t.Fatalf("report = %d commits, %d sessions", report.Commits, len(report.Sessions))
	}
	if failed := report.Failed(); len(failed) != 1 || failed[0].Repo.Name != "web" {
		t.Errorf("failed = %+v", failed)
	}
	if len(store.saved) != 1 || len(store.saved[0]) != 2 {
		t.Errorf("saved = %+v", store.saved)
	}
	if sc.opts[0].Since != "1d" {
		t.Errorf("options not passed through: %+v", sc.opts[0])
	}
}

func TestOrchestratorSkipsSaveWhenEmpty(t *testing.T) {
	store := &memoryStore{err: errors.New("must not be called")}
	sc := &scriptedScanner{polls: [][]models.Commit{{}}}

	report, err := NewOrchestrator(sc, store, testConfig()).Scan(context.Background(), scanner.Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Sessions) != 0 {
		t.Errorf("sessions = %d", len(report.Sessions))
	}
}

func TestOrchestratorPropagatesSaveFailure(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	sc := &scriptedScanner{polls: [][]models.Commit{{agentCommit("a", 0)}}}

	if _, err := NewOrchestrator(sc, store, testConfig()).Scan(context.Background(), scanner.Options{}); err == nil {
		t.Fatal("expected save error")
	}
}

func TestOrchestratorRequiresRepos(t *testing.T) {
	_, err := NewOrchestrator(&scriptedScanner{}, &memoryStore{}, config.Default()).Scan(context.Background(), scanner.Options{})
	if !errors.Is(err, config.ErrNoRepos) {
		t.Fatalf("err = %v, want ErrNoRepos", err)
	}
}

func TestWatcherEmitsOnlyNewCommits(t *testing.T) {
	fake := clock.Fake(t0)
	sc := &scriptedScanner{polls: [][]models.Commit{
		{agentCommit("a", 0)},
		{agentCommit("c", 2*time.Minute), agentCommit("b", time.Minute), agentCommit("a", 0)},
		{agentCommit("d", 3*time.Minute), agentCommit("c", 2*time.Minute)},
	}}

	primedWith := -1
	w := NewWatcher(sc, testConfig().Repos, WatcherConfig{
		Clock:    fake,
		OnPrimed: func(seen int) { primedWith = seen },
	})

	emitted := make(chan models.Commit, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(c models.Commit) { emitted <- c })
	}()

	fake.WaitForTickers(1)
	if primedWith != 1 {
		t.Errorf("primed with %d commits, want 1", primedWith)
	}

	fake.Advance(DefaultWatchInterval)
	expectCommit(t, emitted, "b")
	expectCommit(t, emitted, "c")

	fake.Advance(DefaultWatchInterval)
	expectCommit(t, emitted, "d")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	select {
	case c := <-emitted:
		t.Errorf("unexpected commit %s", c.Hash)
	default:
	}

	for _, opts := range sc.opts {
		if opts.Since != DefaultWatchWindow {
			t.Errorf("poll window = %q, want %q", opts.Since, DefaultWatchWindow)
		}
	}
}

func TestWatcherStopsWhenCancelledBeforeTick(t *testing.T) {
	sc := &scriptedScanner{polls: [][]models.Commit{{}}}
	w := NewWatcher(sc, nil, WatcherConfig{Clock: clock.Fake(t0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx, func(models.Commit) { t.Error("emit called") }); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func expectCommit(t *testing.T, ch <-chan models.Commit, hash string) {
	t.Helper()
	select {
	case c := <-ch:
		if c.Hash != hash {
			t.Errorf("emitted %s, want %s", c.Hash, hash)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for commit %s", hash)
	}
}
