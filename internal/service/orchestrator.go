// Package service wires scanning, grouping and persistence into the
// operations the commands run.
package service

import (
	"context"

	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/scanner"
	"github.com/gnomegl/drift/internal/session"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Scanner finds agent commits across repositories.
type Scanner interface {
	ScanAll(ctx context.Context, repos []config.Repo, opts scanner.Options) ([]models.Commit, []scanner.Result)
}

// SessionStore persists grouped sessions.
type SessionStore interface {
	Save(ctx context.Context, sessions []models.Session) error
}

// Report is the outcome of one scan.
type Report struct {
	Sessions []models.Session
	Commits  int
	// Results holds one entry per scanned repo, including failed ones.
	Results []scanner.Result
}

// Failed returns the repos whose scan returned an error.
func (r *Report) Failed() []scanner.Result {
	var failed []scanner.Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

type Orchestrator struct {
	scanner Scanner
	store   SessionStore
	config  *config.Config
	log     logze.Logger
}

func NewOrchestrator(sc Scanner, store SessionStore, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		scanner: sc,
		store:   store,
		config:  cfg,
		log:     logze.With("component", "orchestrator"),
	}
}

// Scan scans the configured repos, groups the agent commits into sessions
// and saves them. Repos that fail to scan are reported, not fatal; a failed
// save is returned as an error.
func (o *Orchestrator) Scan(ctx context.Context, opts scanner.Options) (*Report, error) {
	if len(o.config.Repos) == 0 {
		return nil, config.ErrNoRepos
	}

	commits, results := o.scanner.ScanAll(ctx, o.config.Repos, opts)
	sessions := session.Group(commits, o.config.SessionGap())

	report := &Report{Sessions: sessions, Commits: len(commits), Results: results}
	o.log.Debug("scan finished",
		"repos", len(results), "failed", len(report.Failed()),
		"commits", len(commits), "sessions", len(sessions))

	if len(sessions) == 0 {
		return report, nil
	}
	if err := o.store.Save(ctx, sessions); err != nil {
		return report, errm.Wrap(err, "save sessions")
	}
	return report, nil
}
