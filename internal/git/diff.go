package git

import (
	"context"
	"regexp"
	"strconv"

	"github.com/gnomegl/drift/internal/models"
)

var (
	filesPattern      = regexp.MustCompile(`(\d+)\s+files?\s+changed`)
	insertionsPattern = regexp.MustCompile(`(\d+)\s+insertions?`)
	deletionsPattern  = regexp.MustCompile(`(\d+)\s+deletions?`)
)

// Shortstat summarizes the change over rangeExpr ("a^..b").
func (c *CLI) Shortstat(ctx context.Context, dir, rangeExpr string) (models.ShortStat, error) {
	out, err := c.Run(ctx, dir, "diff", "--shortstat", rangeExpr)
	if err != nil {
		return models.ShortStat{}, err
	}
	return ParseShortstat(out), nil
}

// DiffText returns the unified diff over rangeExpr.
func (c *CLI) DiffText(ctx context.Context, dir, rangeExpr string) (string, error) {
	return c.Run(ctx, dir, "diff", rangeExpr)
}

// NameOnly lists the paths touched over rangeExpr.
func (c *CLI) NameOnly(ctx context.Context, dir, rangeExpr string) ([]string, error) {
	out, err := c.Run(ctx, dir, "diff", "--name-only", rangeExpr)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ParseShortstat reads "N files changed, N insertions(+), N deletions(-)".
// Any missing part counts as zero.
func ParseShortstat(out string) models.ShortStat {
	return models.ShortStat{
		FilesChanged: firstInt(filesPattern, out),
		Insertions:   firstInt(insertionsPattern, out),
		Deletions:    firstInt(deletionsPattern, out),
	}
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
