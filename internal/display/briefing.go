package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/session"
	"github.com/gnomegl/drift/internal/utils"
)

const (
	FormatText     = "text"
	FormatMarkdown = "md"
)

// BriefingOptions controls Briefing output.
type BriefingOptions struct {
	Format string
	Now    time.Time
	// RepoURLs maps repo names to browsable https URLs. Markdown output
	// links pull requests for repos present here.
	RepoURLs map[string]string
}

// Briefing summarizes sessions grouped per repo, as terminal text or markdown.
func Briefing(sessions []models.Session, opts BriefingOptions) string {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Format == FormatMarkdown {
		return markdownBriefing(sessions, opts)
	}
	return textBriefing(sessions, opts.Now)
}

// BriefingFilename is where markdown briefings are written.
func BriefingFilename(now time.Time) string {
	return fmt.Sprintf("drift-briefing-%s.md", now.UTC().Format("2006-01-02"))
}

// TimeContext phrases how long ago oldest was, for the briefing opening.
func TimeContext(oldest, now time.Time) string {
	hours := int(now.Sub(oldest).Hours())
	switch {
	case hours < 1:
		return "In the past hour"
	case hours < 6:
		return fmt.Sprintf("Over the past %d hours", hours)
	case hours < 12:
		return "While you were away"
	case hours < 18:
		return "Overnight"
	case hours < 36:
		return "Since yesterday"
	default:
		return fmt.Sprintf("Over the past %d days", int(math.Round(float64(hours)/24)))
	}
}

func oldestStart(sessions []models.Session) time.Time {
	oldest := sessions[0].StartTime
	for _, s := range sessions[1:] {
		if s.StartTime.Before(oldest) {
			oldest = s.StartTime
		}
	}
	return oldest
}

func textBriefing(sessions []models.Session, now time.Time) string {
	if len(sessions) == 0 {
		return box(
			titleColor.Sprint("Morning Briefing")+"\n\n"+
				dim.Sprint("All quiet. No agent activity detected.")+"\n\n"+
				dim.Sprint("Your agents are either resting or you need to check your config."),
			"gray", 1, 1)
	}

	sum := session.Totals(sessions)
	opening := fmt.Sprintf("%s, %s %s worked across %s %s. %s %s total (%s lines).",
		TimeContext(oldestStart(sessions), now),
		titleColor.Sprint(sum.Agents), utils.Pluralize(sum.Agents, "agent"),
		titleColor.Sprint(sum.Repos), utils.Pluralize(sum.Repos, "repo"),
		titleColor.Sprint(sum.Commits), utils.Pluralize(sum.Commits, "commit"),
		changes(sum.Insertions, sum.Deletions))

	names, byRepo := session.ByRepo(sessions)
	var repos []string
	for _, name := range names {
		repoSessions := byRepo[name]
		repoSum := session.Totals(repoSessions)

		var b strings.Builder
		fmt.Fprintf(&b, "  %s %s %d %s, %d %s",
			RepoColor(name).Sprintf("▸ %s", name), dim.Sprint("·"),
			repoSum.Sessions, utils.Pluralize(repoSum.Sessions, "session"),
			repoSum.Commits, utils.Pluralize(repoSum.Commits, "commit"))
		for _, s := range repoSessions {
			fmt.Fprintf(&b, "\n    %s %s", dim.Sprint("·"), describeSession(s))
		}
		repos = append(repos, b.String())
	}

	content := titleColor.Sprint("☀ Morning Briefing") + "\n\n" + opening + "\n\n" + strings.Join(repos, "\n\n")
	return box(content, "yellow", 1, 1)
}

func describeSession(s models.Session) string {
	summary := s.PRTitle
	if summary == "" {
		summary = s.FirstMessage()
	}
	if summary == "" {
		summary = "unknown work"
	}

	parts := []string{titleColor.Sprint(s.Author), utils.Truncate(summary, messageWidth(20))}
	if s.HasPR() {
		parts = append(parts, prColor.Sprintf("PR #%d", s.PRNumber))
	}
	parts = append(parts,
		fmt.Sprintf("%s across %d %s", changes(s.Insertions, s.Deletions), s.FilesChanged, utils.Pluralize(s.FilesChanged, "file")),
		dim.Sprintf("(%s)", utils.FormatDuration(s.StartTime, s.EndTime)))
	return strings.Join(parts, dim.Sprint(" · "))
}

func markdownBriefing(sessions []models.Session, opts BriefingOptions) string {
	var b strings.Builder
	b.WriteString("# Agent Activity Briefing\n\n")
	if len(sessions) == 0 {
		b.WriteString("No agent activity detected.\n")
		return b.String()
	}

	sum := session.Totals(sessions)
	fmt.Fprintf(&b, "%s, **%d** %s worked across **%d** %s. **%d** %s total (+%d/-%d lines).\n\n",
		TimeContext(oldestStart(sessions), opts.Now),
		sum.Agents, utils.Pluralize(sum.Agents, "agent"),
		sum.Repos, utils.Pluralize(sum.Repos, "repo"),
		sum.Commits, utils.Pluralize(sum.Commits, "commit"),
		sum.Insertions, sum.Deletions)

	names, byRepo := session.ByRepo(sessions)
	for _, name := range names {
		fmt.Fprintf(&b, "## %s\n\n", name)
		for _, s := range byRepo[name] {
			pr := ""
			if s.HasPR() {
				pr = fmt.Sprintf(" (PR #%d)", s.PRNumber)
				if url := opts.RepoURLs[name]; url != "" {
					pr = fmt.Sprintf(" ([PR #%d](%s/pull/%d))", s.PRNumber, url, s.PRNumber)
				}
			}
			fmt.Fprintf(&b, "- **%s**%s · %d %s, +%d/-%d lines, %s\n",
				s.Branch, pr,
				len(s.Commits), utils.Pluralize(len(s.Commits), "commit"),
				s.Insertions, s.Deletions,
				utils.FormatDuration(s.StartTime, s.EndTime))
			for _, c := range s.Commits {
				fmt.Fprintf(&b, "  - `%s` %s\n", c.HashShort, c.Message)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
