package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/session"
	"github.com/gnomegl/drift/internal/utils"
)

// Dashboard renders the session timeline shown by scan and history.
func Dashboard(sessions []models.Session, now time.Time) string {
	if len(sessions) == 0 {
		return "\n" + box(
			dim.Sprint("No agent activity found.")+"\n\n"+
				dim.Sprint("Try adjusting your time window: ")+hintColor.Sprint(`drift scan --since "24h"`)+"\n"+
				dim.Sprint("Or add repos with: ")+hintColor.Sprint("drift init"),
			"gray", 1, 1) + "\n"
	}

	var b strings.Builder
	b.WriteString(dashboardHeader(sessions))
	b.WriteString("\n\n")
	for i, s := range sessions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sessionRow(s, now))
		b.WriteString("\n")
	}
	return b.String()
}

func dashboardHeader(sessions []models.Session) string {
	sum := session.Totals(sessions)
	title := titleColor.Sprint("drift") + dim.Sprint(" · agent activity timeline")

	stats := strings.Join([]string{
		count(sum.Sessions, "session"),
		count(sum.Commits, "commit"),
		count(sum.Repos, "repo"),
		count(sum.Agents, "agent"),
		changes(sum.Insertions, sum.Deletions),
	}, dim.Sprint("  ·  "))

	return box(title+"\n"+stats, "cyan", 0, 1)
}

func count(n int, noun string) string {
	return titleColor.Sprint(n) + dim.Sprintf(" %s", utils.Pluralize(n, noun))
}

func sessionRow(s models.Session, now time.Time) string {
	repo := RepoColor(s.Repo).Sprintf("[%s]", s.Repo)
	when := dim.Sprintf("%s %s", utils.FormatTime(s.StartTime), utils.FormatRelative(s.StartTime, now))
	duration := dim.Sprintf("(%s)", utils.FormatDuration(s.StartTime, s.EndTime))

	pr := ""
	if s.HasPR() {
		pr = " " + prColor.Sprintf("PR #%d", s.PRNumber)
	}

	line1 := fmt.Sprintf("  %s %s %s%s %s", when, repo, branchColor.Sprint(s.Branch), pr, duration)
	line2 := fmt.Sprintf("       %s · %s · %s · %s",
		dim.Sprint(s.Author),
		fmt.Sprintf("%d %s", len(s.Commits), utils.Pluralize(len(s.Commits), "commit")),
		dim.Sprintf("%d %s", s.FilesChanged, utils.Pluralize(s.FilesChanged, "file")),
		changes(s.Insertions, s.Deletions))
	line3 := "       " + utils.Truncate(s.FirstMessage(), messageWidth(7))
	line4 := "       " + dim.Sprintf("id %s", s.ID)

	return strings.Join([]string{line1, line2, line3, line4}, "\n")
}

// HistoryHeader introduces a listing of stored sessions.
func HistoryHeader(n int) string {
	return "\n" + headerColor.Sprintf("  Session history (last %d):", n) + "\n"
}

// NoHistory is shown when the store holds no sessions.
func NoHistory() string {
	return "\n" + dim.Sprint("  No session history found.") + "\n" +
		dim.Sprint("  Run ") + hintColor.Sprint("drift scan") + dim.Sprint(" to scan for agent activity.") + "\n"
}
