package scanner

import (
	"regexp"
	"strings"

	"github.com/gnomegl/drift/internal/config"
	"github.com/maxbolgarin/errm"
)

// Classifier decides whether a commit was written by an automated agent.
// Patterns are compiled once.
type Classifier struct {
	authors  []string
	patterns []*regexp.Regexp
}

// NewClassifier lowercases the author substrings and compiles each message
// pattern case-insensitively.
func NewClassifier(authors, patterns []string) (*Classifier, error) {
	c := &Classifier{
		authors:  make([]string, 0, len(authors)),
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}
	for _, a := range authors {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			c.authors = append(c.authors, a)
		}
	}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, errm.Wrap(err, "compile message pattern "+p)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// IsAgent reports whether the author name or email contains an agent author
// substring, or the full message matches an agent message pattern.
func (c *Classifier) IsAgent(author, email, subject, body string) bool {
	name := strings.ToLower(author)
	mail := strings.ToLower(email)
	for _, a := range c.authors {
		if strings.Contains(name, a) || strings.Contains(mail, a) {
			return true
		}
	}

	message := subject + "\n" + body
	for _, re := range c.patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// Classify is the one-shot form of IsAgent over the configured agent rules.
// Patterns that fail to compile are skipped.
func Classify(author, email, subject, body string, agents config.Agents) bool {
	c := &Classifier{}
	for _, a := range agents.Authors {
		if a = strings.ToLower(a); a != "" {
			c.authors = append(c.authors, a)
		}
	}
	for _, p := range agents.MessagePatterns {
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			c.patterns = append(c.patterns, re)
		}
	}
	return c.IsAgent(author, email, subject, body)
}

// Match reports whether the author name or email contains filter,
// ignoring case. It replaces classification when the user asks about a
// specific author.
func Match(author, email, filter string) bool {
	filter = strings.ToLower(filter)
	return strings.Contains(strings.ToLower(author), filter) ||
		strings.Contains(strings.ToLower(email), filter)
}
