package scanner

import (
	"testing"

	"github.com/gnomegl/drift/internal/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		author  string
		email   string
		subject string
		body    string
		agents  config.Agents
		want    bool
	}{
		{
			name:   "author pattern matches email",
			author: "Automation",
			email:  "bot@claude.ai",
			agents: config.Agents{Authors: []string{"claude"}},
			want:   true,
		},
		{
			name:   "author pattern ignores case",
			author: "GitHub Copilot",
			agents: config.Agents{Authors: []string{"copilot"}},
			want:   true,
		},
		{
			name:    "bracket pattern does not match parentheses",
			author:  "alice",
			email:   "alice@example.com",
			subject: "fix: update (bot)",
			agents:  config.Agents{MessagePatterns: []string{`\[bot\]`}},
			want:    false,
		},
		{
			name:    "message pattern matches body",
			author:  "alice",
			subject: "feat: add cache",
			body:    "Co-Authored-By: Claude <noreply@anthropic.com>",
			agents:  config.Agents{MessagePatterns: []string{`co-authored-by:.*claude`}},
			want:    true,
		},
		{
			name:    "no rule matches",
			author:  "alice",
			email:   "alice@example.com",
			subject: "refactor parser",
			agents:  config.Agents{Authors: config.DefaultAgentAuthors, MessagePatterns: config.DefaultMessagePatterns},
			want:    false,
		},
		{
			name:    "invalid pattern is skipped",
			author:  "alice",
			subject: "[bot] bump deps",
			agents:  config.Agents{MessagePatterns: []string{"(unclosed", `\[bot\]`}},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.author, tt.email, tt.subject, tt.body, tt.agents)
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewClassifierRejectsInvalidPattern(t *testing.T) {
	if _, err := NewClassifier(nil, []string{"(unclosed"}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestMatch(t *testing.T) {
	if !Match("Alice Smith", "alice@example.com", "ALICE") {
		t.Error("expected name match")
	}
	if !Match("A. Smith", "asmith@corp.io", "corp.io") {
		t.Error("expected email match")
	}
	if Match("Bob", "bob@example.com", "alice") {
		t.Error("unexpected match")
	}
}
