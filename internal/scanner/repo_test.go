package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/git"
)

// commitRepo creates a repository with one commit by the given identity.
// Skips when no git binary is available.
func commitRepo(t *testing.T, name, email string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME="+name, "GIT_AUTHOR_EMAIL="+email,
			"GIT_COMMITTER_NAME="+name, "GIT_COMMITTER_EMAIL="+email,
			"GIT_CONFIG_NOSYSTEM=1", "HOME="+dir,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}

	run("init", "-q", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "a.txt")
	run("commit", "-q", "-m", "plain change")
	return dir
}

func TestScanRepoAuthorFilterIgnoresCaseAgainstGit(t *testing.T) {
	dir := commitRepo(t, "Claude Bot", "user+bot@example.com")
	s, err := New(git.New(), config.Default(), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	repo := config.Repo{Path: dir, Name: "api"}
	tests := []struct {
		filter string
		want   int
	}{
		{"Claude", 1},
		{"claude", 1},
		{"CLAUDE BOT", 1},
		{"USER+BOT@example", 1},
		{"bot@EXAMPLE.com", 1},
		{"c.aude", 0},
		{"devin", 0},
	}
	for _, tt := range tests {
		commits, err := s.ScanRepo(context.Background(), repo, Options{Since: "1d", Author: tt.filter})
		if err != nil {
			t.Fatalf("ScanRepo(%q): %v", tt.filter, err)
		}
		if len(commits) != tt.want {
			t.Errorf("filter %q: got %d commits, want %d", tt.filter, len(commits), tt.want)
		}
		for _, c := range commits {
			if !Match(c.Author, c.Email, tt.filter) {
				t.Errorf("filter %q kept non-matching commit by %s <%s>", tt.filter, c.Author, c.Email)
			}
		}
	}
}
