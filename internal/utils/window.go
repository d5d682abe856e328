package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the lookback used when a window expression matches nothing.
const DefaultWindow = 12 * time.Hour

var (
	shortWindowPattern = regexp.MustCompile(`^(\d+)(h|d|m|w)$`)
	agoWindowPattern   = regexp.MustCompile(`^(\d+)\s+(hour|day|minute|week|month)s?(\s+ago)?$`)
)

// absoluteLayouts are tried in order for window expressions that are not
// relative shorthand.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseWindow resolves a time window expression relative to now and returns
// the instant the window starts at. Accepted forms:
//
//	12h, 3d, 45m, 2w
//	3 hours, 1 day ago, 2 months ago
//	any absolute date in one of absoluteLayouts (local time when no zone is given)
//
// Anything else falls back to 12 hours before now.
func ParseWindow(window string, now time.Time) time.Time {
	window = strings.TrimSpace(window)

	if m := shortWindowPattern.FindStringSubmatch(window); m != nil {
		amount, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "h":
			return now.Add(-time.Duration(amount) * time.Hour)
		case "d":
			return now.AddDate(0, 0, -amount)
		case "m":
			return now.Add(-time.Duration(amount) * time.Minute)
		case "w":
			return now.AddDate(0, 0, -7*amount)
		}
	}

	if m := agoWindowPattern.FindStringSubmatch(strings.ToLower(window)); m != nil {
		amount, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "minute":
			return now.Add(-time.Duration(amount) * time.Minute)
		case "hour":
			return now.Add(-time.Duration(amount) * time.Hour)
		case "day":
			return now.AddDate(0, 0, -amount)
		case "week":
			return now.AddDate(0, 0, -7*amount)
		case "month":
			return now.AddDate(0, -amount, 0)
		}
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, window, now.Location()); err == nil {
			return t
		}
	}

	return now.Add(-DefaultWindow)
}
