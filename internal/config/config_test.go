package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.General.DefaultWindow != DefaultWindow {
		t.Errorf("DefaultWindow = %q", cfg.General.DefaultWindow)
	}
	if cfg.SessionGap() != 30*time.Minute {
		t.Errorf("SessionGap = %v, want 30m", cfg.SessionGap())
	}
	if len(cfg.Agents.Authors) == 0 || len(cfg.Agents.MessagePatterns) == 0 {
		t.Error("default agent patterns are empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Repos) != 0 {
		t.Errorf("Repos = %v, want none", cfg.Repos)
	}
	if cfg.General.Theme != DefaultTheme {
		t.Errorf("Theme = %q", cfg.General.Theme)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[general]
default_window = "24h"
session_gap_minutes = 45

[[repos]]
path = "/src/api"
name = "api"

[agents]
authors = ["claude"]
message_patterns = ["\\[bot\\]"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.DefaultWindow != "24h" {
		t.Errorf("DefaultWindow = %q", cfg.General.DefaultWindow)
	}
	if cfg.SessionGap() != 45*time.Minute {
		t.Errorf("SessionGap = %v", cfg.SessionGap())
	}
	if len(cfg.Repos) != 1 || cfg.Repos[0].Name != "api" {
		t.Errorf("Repos = %+v", cfg.Repos)
	}
	if len(cfg.Agents.Authors) != 1 || cfg.Agents.Authors[0] != "claude" {
		t.Errorf("Authors = %v", cfg.Agents.Authors)
	}
	if cfg.General.Theme != DefaultTheme {
		t.Errorf("Theme default not applied: %q", cfg.General.Theme)
	}
}

func TestLoadRejectsInvalidPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[agents]\nmessage_patterns = [\"(unclosed\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid regular expression")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.General.DefaultWindow = "3d"
	cfg.Repos = append(cfg.Repos, Repo{Path: "/src/web", Name: "web"})

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists(path) {
		t.Fatal("config file not created")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.General.DefaultWindow != "3d" {
		t.Errorf("DefaultWindow = %q", loaded.General.DefaultWindow)
	}
	if len(loaded.Repos) != 1 || loaded.Repos[0].Path != "/src/web" {
		t.Errorf("Repos = %+v", loaded.Repos)
	}
}

func TestAddRepo(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	repo, added, err := cfg.AddRepo(dir, "")
	if err != nil {
		t.Fatalf("AddRepo: %v", err)
	}
	if !added {
		t.Fatal("first AddRepo reported duplicate")
	}
	if repo.Name != filepath.Base(dir) {
		t.Errorf("Name = %q, want %q", repo.Name, filepath.Base(dir))
	}

	_, added, err = cfg.AddRepo(dir+"/", "other")
	if err != nil {
		t.Fatalf("AddRepo: %v", err)
	}
	if added {
		t.Error("second AddRepo of the same directory was added")
	}
	if len(cfg.Repos) != 1 {
		t.Errorf("Repos = %+v", cfg.Repos)
	}

	if _, ok := cfg.FindRepo(repo.Name); !ok {
		t.Error("FindRepo did not find the added repo")
	}
}
