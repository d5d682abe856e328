package git

import (
	"context"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
)

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"

	logFormat = "--format=" + recordSep + "%H" + fieldSep + "%an" + fieldSep + "%ae" + fieldSep + "%aI" + fieldSep + "%s" + fieldSep + "%b"
)

// LogEntry is one commit as reported by git log.
type LogEntry struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
	Subject     string
	Body        string
}

// LogOptions narrows a log query.
type LogOptions struct {
	Since       time.Time
	AllBranches bool
	// Author narrows the log to commits whose "name <email>" contains it,
	// ignoring case. It is matched as a fixed string, not a regex.
	Author string
}

// Log lists commits in dir newer than opts.Since, newest first.
func (c *CLI) Log(ctx context.Context, dir string, opts LogOptions) ([]LogEntry, error) {
	args := []string{"log", logFormat}
	if !opts.Since.IsZero() {
		args = append(args, "--since="+opts.Since.Format(time.RFC3339))
	}
	if opts.AllBranches {
		args = append(args, "--all")
	}
	if opts.Author != "" {
		args = append(args, "--regexp-ignore-case", "--fixed-strings", "--author="+opts.Author)
	}

	out, err := c.Run(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out)
}

func parseLog(out string) ([]LogEntry, error) {
	var entries []LogEntry
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}

		fields := strings.SplitN(record, fieldSep, 6)
		if len(fields) < 6 {
			return nil, errm.Errorf("malformed log record: %q", record)
		}

		date, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, errm.Wrap(err, "parse commit date")
		}

		entries = append(entries, LogEntry{
			Hash:        strings.TrimSpace(fields[0]),
			AuthorName:  fields[1],
			AuthorEmail: fields[2],
			Date:        date,
			Subject:     fields[4],
			Body:        strings.TrimSpace(fields[5]),
		})
	}
	return entries, nil
}
