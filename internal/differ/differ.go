// Package differ computes the combined change of a stored session.
package differ

import (
	"context"
	"fmt"

	"github.com/gnomegl/drift/internal/models"
	"github.com/maxbolgarin/logze/v2"
)

// Unavailable replaces the diff text when no range could be diffed.
const Unavailable = "(Unable to generate diff)"

// Source is the subset of the git adapter the differ needs.
type Source interface {
	DiffText(ctx context.Context, dir, rangeExpr string) (string, error)
	NameOnly(ctx context.Context, dir, rangeExpr string) ([]string, error)
	Shortstat(ctx context.Context, dir, rangeExpr string) (models.ShortStat, error)
}

type Differ struct {
	source Source
	log    logze.Logger
}

func New(source Source) *Differ {
	return &Differ{source: source, log: logze.With("component", "differ")}
}

// ranges lists the ranges to try in order: the whole session from the
// parent of its oldest commit, then only the newest commit.
func ranges(session models.Session) []string {
	oldest := session.Commits[0].Hash
	newest := session.Commits[len(session.Commits)-1].Hash
	whole := oldest + "^.." + newest
	last := newest + "^.." + newest
	if whole == last {
		return []string{whole}
	}
	return []string{whole, last}
}

// Diff returns the unified diff of the session. It never fails: when no
// range can be diffed it returns Unavailable. An empty session yields "".
func (d *Differ) Diff(ctx context.Context, session models.Session) string {
	if len(session.Commits) == 0 {
		return ""
	}
	for _, r := range ranges(session) {
		text, err := d.source.DiffText(ctx, session.RepoPath, r)
		if err == nil {
			return text
		}
		d.log.Debug("diff failed", "session", session.ID, "range", r, "error", err)
	}
	return Unavailable
}

// Stats returns the files touched and line counts of the session. When no
// range can be diffed it falls back to the totals recorded on the session.
func (d *Differ) Stats(ctx context.Context, session models.Session) models.DiffStats {
	if len(session.Commits) == 0 {
		return models.DiffStats{FilesChanged: []string{}, Summary: "No changes"}
	}
	for _, r := range ranges(session) {
		stats, err := d.rangeStats(ctx, session.RepoPath, r)
		if err == nil {
			return stats
		}
		d.log.Debug("diff stats failed", "session", session.ID, "range", r, "error", err)
	}
	return models.DiffStats{
		FilesChanged: []string{},
		Insertions:   session.Insertions,
		Deletions:    session.Deletions,
		Summary: fmt.Sprintf("~%d files changed, +%d/-%d lines",
			session.FilesChanged, session.Insertions, session.Deletions),
	}
}

func (d *Differ) rangeStats(ctx context.Context, dir, rangeExpr string) (models.DiffStats, error) {
	files, err := d.source.NameOnly(ctx, dir, rangeExpr)
	if err != nil {
		return models.DiffStats{}, err
	}
	stat, err := d.source.Shortstat(ctx, dir, rangeExpr)
	if err != nil {
		return models.DiffStats{}, err
	}
	if files == nil {
		files = []string{}
	}
	return models.DiffStats{
		FilesChanged: files,
		Insertions:   stat.Insertions,
		Deletions:    stat.Deletions,
		Summary: fmt.Sprintf("%d files changed, +%d/-%d lines",
			len(files), stat.Insertions, stat.Deletions),
	}, nil
}
