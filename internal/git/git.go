// Package git is drift's commit source: a thin adapter over the git CLI.
// Every command targets an explicit repository directory via -C, and
// stderr is folded into the returned error so failures are diagnosable
// without re-running the command.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
)

// DefaultTimeout bounds every individual git invocation.
const DefaultTimeout = 15 * time.Second

// CLI runs git subprocesses. The zero value is not usable; use New.
type CLI struct {
	binary  string
	timeout time.Duration
}

// New returns a CLI using the git binary on PATH and DefaultTimeout.
func New() *CLI {
	return &CLI{binary: "git", timeout: DefaultTimeout}
}

// WithTimeout returns a copy of c bounding each call by d.
func (c *CLI) WithTimeout(d time.Duration) *CLI {
	clone := *c
	clone.timeout = d
	return &clone
}

// Run executes git in dir and returns stdout.
func (c *CLI) Run(ctx context.Context, dir string, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	fullArgs := append([]string{"-C", dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, c.binary, fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", errm.Wrap(err, fmt.Sprintf("git %s in %s (stderr: %s)",
			strings.Join(args, " "), dir, strings.TrimSpace(stderr.String())))
	}
	return stdout.String(), nil
}

// CurrentBranch returns the abbreviated name of HEAD.
func (c *CLI) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := c.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// BranchesContaining lists local branches that contain hash.
func (c *CLI) BranchesContaining(ctx context.Context, dir, hash string) ([]string, error) {
	out, err := c.Run(ctx, dir, "branch", "--contains", hash, "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// PreferredBranch picks the branch to attribute a commit to. Feature
// branches win over the default branch because agent work usually lands
// on a topic branch first.
func PreferredBranch(branches []string) string {
	for _, b := range branches {
		if b != "main" && b != "master" {
			return b
		}
	}
	if len(branches) > 0 {
		return branches[0]
	}
	return UnknownBranch
}

// UnknownBranch is attributed when branch membership cannot be resolved.
const UnknownBranch = "unknown"

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
