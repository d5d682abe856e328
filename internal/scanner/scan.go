package scanner

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/gnomegl/drift/internal/clock"
	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/git"
	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/utils"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
)

const (
	defaultWorkers     = 8
	defaultConcurrency = 4
	shortHashLen       = 7
)

// Source is the subset of the git adapter a scan needs.
type Source interface {
	IsRepository(path string) bool
	Log(ctx context.Context, dir string, opts git.LogOptions) ([]git.LogEntry, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	BranchesContaining(ctx context.Context, dir, hash string) ([]string, error)
	Shortstat(ctx context.Context, dir, rangeExpr string) (models.ShortStat, error)
}

// Options narrows a scan. Empty fields fall back to the configuration.
type Options struct {
	// Since is a time window expression such as "12h" or "2 days ago".
	Since string
	// Author switches off agent classification and keeps every commit
	// whose author name or email contains it.
	Author string
	// Repo limits the scan to the configured repo with this name.
	Repo string
}

// Result is the outcome of scanning one repository.
type Result struct {
	Repo    config.Repo
	Commits []models.Commit
	Err     error
}

// Config holds scan tuning knobs.
type Config struct {
	// Workers bounds concurrent per-commit enrichment calls.
	Workers int
	// Concurrency bounds how many repositories are scanned at once.
	Concurrency int
	// Progress receives a progress bar while scanning several repos. Nil disables it.
	Progress io.Writer
	Clock    clock.Clock
}

func DefaultConfig() Config {
	return Config{
		Workers:     defaultWorkers,
		Concurrency: defaultConcurrency,
		Clock:       clock.Real(),
	}
}

// Scanner finds agent commits across the configured repositories.
type Scanner struct {
	source     Source
	classifier *Classifier
	window     string
	pool       *ants.Pool
	cfg        Config
	log        logze.Logger
}

// New builds a Scanner for the agent rules and default window of appCfg.
// Call Close to release the enrichment pool.
func New(source Source, appCfg *config.Config, cfg Config) (*Scanner, error) {
	classifier, err := NewClassifier(appCfg.Agents.Authors, appCfg.Agents.MessagePatterns)
	if err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errm.Wrap(err, "create enrichment pool")
	}

	return &Scanner{
		source:     source,
		classifier: classifier,
		window:     appCfg.General.DefaultWindow,
		pool:       pool,
		cfg:        cfg,
		log:        logze.With("component", "scanner"),
	}, nil
}

func (s *Scanner) Close() {
	s.pool.Release()
}

// ScanAll scans every repo concurrently. A failing repository is logged and
// contributes no commits; the others are unaffected. Commits are returned
// newest first alongside one Result per scanned repo, in input order.
func (s *Scanner) ScanAll(ctx context.Context, repos []config.Repo, opts Options) ([]models.Commit, []Result) {
	repos = FilterRepos(repos, opts.Repo)
	results := make([]Result, len(repos))
	if len(repos) == 0 {
		return []models.Commit{}, results
	}

	progress := s.cfg.Progress
	if progress == nil || len(repos) == 1 {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(repos),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("[cyan]Scanning repositories[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, repo := range repos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			commits, err := s.ScanRepo(ctx, repo, opts)
			if err != nil {
				s.log.Warn("repo scan failed", "repo", repo.Name, "path", repo.Path, "error", err)
				commits = nil
			}
			results[i] = Result{Repo: repo, Commits: commits, Err: err}
			_ = bar.Add(1)
		}()
	}
	wg.Wait()
	_ = bar.Finish()

	var all []models.Commit
	for _, r := range results {
		all = append(all, r.Commits...)
	}
	SortNewestFirst(all)
	if all == nil {
		all = []models.Commit{}
	}
	return all, results
}

// ScanRepo lists the agent commits of one repository inside the scan window,
// each enriched with its branch and change counts. Branch and stat lookups
// that fail degrade to "unknown" and zero counts.
func (s *Scanner) ScanRepo(ctx context.Context, repo config.Repo, opts Options) ([]models.Commit, error) {
	path, err := config.ResolvePath(repo.Path)
	if err != nil {
		return nil, err
	}
	if !s.source.IsRepository(path) {
		return nil, errm.Wrap(git.ErrNotRepository, path)
	}

	window := lang.Check(strings.TrimSpace(opts.Since), s.window)
	since := utils.ParseWindow(window, s.cfg.Clock.Now())

	entries, err := s.source.Log(ctx, path, git.LogOptions{
		Since:       since,
		AllBranches: true,
		Author:      opts.Author,
	})
	if err != nil {
		return nil, errm.Wrap(err, "read log of "+repo.Name)
	}

	commits := make([]models.Commit, 0, len(entries))
	for _, e := range entries {
		if !s.include(e, opts.Author) {
			continue
		}
		commits = append(commits, models.Commit{
			Hash:      e.Hash,
			HashShort: shortHash(e.Hash),
			Author:    e.AuthorName,
			Email:     e.AuthorEmail,
			Date:      e.Date,
			Message:   e.Subject,
			Body:      e.Body,
			Repo:      repo.Name,
			RepoPath:  path,
		})
	}
	if len(commits) == 0 {
		return commits, nil
	}

	current, err := s.source.CurrentBranch(ctx, path)
	if err != nil {
		s.log.Debug("current branch lookup failed", "repo", repo.Name, "error", err)
		current = git.UnknownBranch
	}

	var wg sync.WaitGroup
	for i := range commits {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			s.enrich(ctx, &commits[i], current)
		}
		if err := s.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	return commits, nil
}

func (s *Scanner) include(e git.LogEntry, author string) bool {
	if author != "" {
		return Match(e.AuthorName, e.AuthorEmail, author)
	}
	return s.classifier.IsAgent(e.AuthorName, e.AuthorEmail, e.Subject, e.Body)
}

// enrich fills the branch and change counts of c. It only writes to c.
func (s *Scanner) enrich(ctx context.Context, c *models.Commit, current string) {
	stat, err := s.source.Shortstat(ctx, c.RepoPath, c.Hash+"^.."+c.Hash)
	if err != nil {
		s.log.Debug("commit stats unavailable", "hash", c.HashShort, "error", err)
	} else {
		c.FilesChanged = stat.FilesChanged
		c.Insertions = stat.Insertions
		c.Deletions = stat.Deletions
	}

	branches, err := s.source.BranchesContaining(ctx, c.RepoPath, c.Hash)
	switch {
	case err != nil:
		s.log.Debug("branch lookup failed", "hash", c.HashShort, "error", err)
		c.Branch = git.UnknownBranch
	case len(branches) == 0:
		c.Branch = current
	default:
		c.Branch = git.PreferredBranch(branches)
	}
}

// FilterRepos keeps the repo named name, ignoring case. An empty name keeps all.
func FilterRepos(repos []config.Repo, name string) []config.Repo {
	if name == "" {
		return repos
	}
	var out []config.Repo
	for _, r := range repos {
		if strings.EqualFold(r.Name, name) {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst orders commits by date descending. Equal dates keep their
// relative order.
func SortNewestFirst(commits []models.Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Date.After(commits[j].Date)
	})
}

func shortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}
