package service

import (
	"context"
	"time"

	"github.com/gnomegl/drift/internal/clock"
	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/scanner"
	"github.com/maxbolgarin/logze/v2"
)

const (
	DefaultWatchInterval = 10 * time.Second
	DefaultWatchWindow   = "5m"
)

type WatcherConfig struct {
	Interval time.Duration
	// Window is the lookback of every poll.
	Window string
	Clock  clock.Clock
	// OnPrimed is called once after the first poll with the number of
	// commits that were already present.
	OnPrimed func(seen int)
}

func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Interval: DefaultWatchInterval,
		Window:   DefaultWatchWindow,
		Clock:    clock.Real(),
	}
}

// Watcher polls the repos and reports agent commits as they appear.
// Commits already present on the first poll are not reported. The set of
// seen hashes lives as long as the Watcher.
type Watcher struct {
	scanner Scanner
	repos   []config.Repo
	cfg     WatcherConfig
	seen    map[string]struct{}
	log     logze.Logger
}

func NewWatcher(sc Scanner, repos []config.Repo, cfg WatcherConfig) *Watcher {
	defaults := DefaultWatcherConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Window == "" {
		cfg.Window = defaults.Window
	}
	if cfg.Clock == nil {
		cfg.Clock = defaults.Clock
	}
	return &Watcher{
		scanner: sc,
		repos:   repos,
		cfg:     cfg,
		seen:    make(map[string]struct{}),
		log:     logze.With("component", "watcher"),
	}
}

// Run polls until ctx is cancelled, calling emit for every new commit,
// oldest first. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, emit func(models.Commit)) error {
	primed := w.poll(ctx, nil)
	if w.cfg.OnPrimed != nil {
		w.cfg.OnPrimed(primed)
	}

	ticker := w.cfg.Clock.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			if n := w.poll(ctx, emit); n > 0 {
				w.log.Debug("new agent commits", "count", n)
			}
		}
	}
}

// poll scans once and returns how many unseen commits it found. With a nil
// emit the commits are only recorded.
func (w *Watcher) poll(ctx context.Context, emit func(models.Commit)) int {
	commits, _ := w.scanner.ScanAll(ctx, w.repos, scanner.Options{Since: w.cfg.Window})

	found := 0
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if _, ok := w.seen[c.Hash]; ok {
			continue
		}
		w.seen[c.Hash] = struct{}{}
		found++
		if emit != nil {
			emit(c)
		}
	}
	return found
}
