package display

import (
	"fmt"
	"strings"

	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/utils"
)

// SessionDetail renders the header, commit list and touched files of one
// session.
func SessionDetail(s models.Session, stats models.DiffStats) string {
	field := func(label, value string) string {
		return fmt.Sprintf("%s %s", dim.Sprintf("%-10s", label+":"), value)
	}

	lines := []string{
		titleColor.Sprintf("Session: %s", s.ID),
		"",
		field("Repo", RepoColor(s.Repo).Sprint(s.Repo)),
		field("Branch", branchColor.Sprint(s.Branch)),
		field("Author", s.Author),
		field("Started", utils.FormatDateTime(s.StartTime)),
		field("Ended", utils.FormatDateTime(s.EndTime)),
		field("Duration", utils.FormatDuration(s.StartTime, s.EndTime)),
		field("Commits", fmt.Sprint(len(s.Commits))),
		field("Changes", fmt.Sprintf("%s across %d %s",
			changes(s.Insertions, s.Deletions), s.FilesChanged, utils.Pluralize(s.FilesChanged, "file"))),
	}
	if s.HasPR() {
		lines = append(lines, field("PR", prColor.Sprintf("#%d", s.PRNumber)+" "+s.PRTitle))
	}
	if stats.Summary != "" {
		lines = append(lines, field("Diff", stats.Summary))
	}

	var b strings.Builder
	b.WriteString(box(strings.Join(lines, "\n"), "cyan", 0, 1))

	b.WriteString("\n\n" + headerColor.Sprint("  Commits:") + "\n")
	for _, c := range s.Commits {
		fmt.Fprintf(&b, "  %s %s %s\n", hashColor.Sprint(c.HashShort), c.Message, dim.Sprintf("+%d/-%d", c.Insertions, c.Deletions))
	}

	if len(stats.FilesChanged) > 0 {
		b.WriteString("\n" + headerColor.Sprint("  Files changed:") + "\n")
		for _, f := range stats.FilesChanged {
			fmt.Fprintf(&b, "    %s %s\n", dim.Sprint("·"), f)
		}
	}
	return b.String()
}

// ColorizeDiff colors a unified diff line by line.
func ColorizeDiff(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = dim.Sprint(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addColor.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = delColor.Sprint(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkColor.Sprint(line)
		case strings.HasPrefix(line, "diff "):
			lines[i] = titleColor.Sprint(line)
		default:
			lines[i] = dim.Sprint(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// SessionNotFound explains a failed diff lookup.
func SessionNotFound(id string) string {
	return warnColor.Sprintf("Session not found: %s", id) + "\n" +
		dim.Sprint("Run ") + hintColor.Sprint("drift history") + dim.Sprint(" to see available sessions.") + "\n"
}
