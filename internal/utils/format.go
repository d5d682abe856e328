package utils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FormatDuration renders the span between start and end compactly:
// "less than a minute", "25m", "2h 5m", "3d 4h".
func FormatDuration(start, end time.Time) string {
	d := end.Sub(start)
	minutes := d.Minutes()

	switch {
	case minutes < 1:
		return "less than a minute"
	case minutes < 60:
		return fmt.Sprintf("%dm", int(math.Round(minutes)))
	case d.Hours() < 24:
		hours := int(d.Hours())
		mins := int(math.Round(math.Mod(minutes, 60)))
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dd %dh", int(d.Hours()/24), int(d.Hours())%24)
	}
}

// FormatRelative describes t relative to now, e.g. "5 minutes ago".
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}

	var phrase string
	switch {
	case d < 45*time.Second:
		phrase = "a few seconds"
	case d < 90*time.Second:
		phrase = "a minute"
	case d < 45*time.Minute:
		phrase = fmt.Sprintf("%d minutes", int(math.Round(d.Minutes())))
	case d < 90*time.Minute:
		phrase = "an hour"
	case d < 22*time.Hour:
		phrase = fmt.Sprintf("%d hours", int(math.Round(d.Hours())))
	case d < 36*time.Hour:
		phrase = "a day"
	case d < 26*24*time.Hour:
		phrase = fmt.Sprintf("%d days", int(math.Round(d.Hours()/24)))
	case d < 45*24*time.Hour:
		phrase = "a month"
	case d < 320*24*time.Hour:
		phrase = fmt.Sprintf("%d months", int(math.Round(d.Hours()/24/30)))
	case d < 548*24*time.Hour:
		phrase = "a year"
	default:
		phrase = fmt.Sprintf("%d years", int(math.Round(d.Hours()/24/365)))
	}

	if future {
		return "in " + phrase
	}
	return phrase + " ago"
}

func FormatTime(t time.Time) string {
	return t.Local().Format("15:04")
}

func FormatDateTime(t time.Time) string {
	return t.Local().Format("Jan 2, 15:04")
}

// Pluralize returns singular when count is 1 and singular+"s" otherwise.
func Pluralize(count int, singular string) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
