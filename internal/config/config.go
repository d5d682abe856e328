package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gnomegl/drift/internal/utils"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	DefaultDir        = "~/.drift"
	DefaultWindow     = "12h"
	DefaultTheme      = "dark"
	DefaultGapMinutes = 30
)

// DefaultAgentAuthors are matched as case-insensitive substrings of the
// author name and email.
var DefaultAgentAuthors = []string{
	"claude",
	"copilot",
	"codex",
	"cursor",
	"devin",
	"aider",
	"[bot]",
}

// DefaultMessagePatterns are case-insensitive regular expressions matched
// against the full commit message.
var DefaultMessagePatterns = []string{
	`Co-Authored-By:.*Claude`,
	`Generated with \[?Claude Code`,
	`Co-authored-by:.*Copilot`,
	`\[bot\]`,
	`🤖`,
}

// Config mirrors ~/.drift/config.toml.
type Config struct {
	General General `toml:"general" yaml:"general"`
	Repos   []Repo  `toml:"repos" yaml:"repos"`
	Agents  Agents  `toml:"agents" yaml:"agents"`
}

type General struct {
	DefaultWindow     string  `toml:"default_window" yaml:"default_window" env:"DRIFT_DEFAULT_WINDOW"`
	Theme             string  `toml:"theme" yaml:"theme" env:"DRIFT_THEME"`
	SessionGapMinutes float64 `toml:"session_gap_minutes" yaml:"session_gap_minutes" env:"DRIFT_SESSION_GAP_MINUTES"`
}

// Repo is a monitored repository. Path may start with "~".
type Repo struct {
	Path string `toml:"path" yaml:"path"`
	Name string `toml:"name" yaml:"name"`
}

type Agents struct {
	Authors         []string `toml:"authors" yaml:"authors" env:"DRIFT_AGENT_AUTHORS" env-separator:","`
	MessagePatterns []string `toml:"message_patterns" yaml:"message_patterns"`
}

// Default returns the configuration used before `drift init` has run.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// DefaultPath is the config file location when no override is given.
func DefaultPath() string {
	return filepath.Join(utils.ExpandHome(DefaultDir), "config.toml")
}

// DefaultDBPath is the session database location when no override is given.
func DefaultDBPath() string {
	return filepath.Join(utils.ExpandHome(DefaultDir), "drift.db")
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(utils.ExpandHome(path))
	return err == nil && !info.IsDir()
}

// Load reads the config file at path, applies environment overrides and
// defaults, and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	path = utils.ExpandHome(path)
	cfg := &Config{}

	if Exists(path) {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, errm.Wrap(err, "read config "+path)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errm.Wrap(err, "read config from environment")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errm.Wrap(err, "invalid config "+path)
	}
	return cfg, nil
}

// Save writes cfg as TOML to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	path = utils.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errm.Wrap(err, "create config directory")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errm.Wrap(err, "encode config")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errm.Wrap(err, "write config")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errm.Wrap(err, "replace config")
	}
	return nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	c.General.DefaultWindow = lang.Check(c.General.DefaultWindow, DefaultWindow)
	c.General.Theme = lang.Check(c.General.Theme, DefaultTheme)
	if c.General.SessionGapMinutes <= 0 {
		c.General.SessionGapMinutes = DefaultGapMinutes
	}

	if len(c.Agents.Authors) == 0 {
		c.Agents.Authors = append([]string(nil), DefaultAgentAuthors...)
	}
	if len(c.Agents.MessagePatterns) == 0 {
		c.Agents.MessagePatterns = append([]string(nil), DefaultMessagePatterns...)
	}
	if c.Repos == nil {
		c.Repos = []Repo{}
	}
}

// Validate checks the parts of the config that would otherwise fail
// halfway through a scan.
func (c *Config) Validate() error {
	for _, pattern := range c.Agents.MessagePatterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return errm.Wrap(ErrInvalidPattern, pattern+": "+err.Error())
		}
	}
	for i, repo := range c.Repos {
		if repo.Path == "" {
			return errm.Errorf("repos[%d]: %s", i, ErrEmptyRepoPath)
		}
	}
	switch c.General.Theme {
	case "dark", "light":
	default:
		return errm.Errorf("%s: %q", ErrInvalidTheme, c.General.Theme)
	}
	return nil
}

// SessionGap is the maximum gap between consecutive commits of one session.
func (c *Config) SessionGap() time.Duration {
	return time.Duration(c.General.SessionGapMinutes * float64(time.Minute))
}

// FindRepo returns the repo whose name equals name, ignoring case.
func (c *Config) FindRepo(name string) (Repo, bool) {
	for _, repo := range c.Repos {
		if strings.EqualFold(repo.Name, name) {
			return repo, true
		}
	}
	return Repo{}, false
}

// AddRepo appends the repository at path unless an entry already resolves
// to the same directory. name defaults to the directory's base name. The
// returned bool is false when the repo was already configured.
func (c *Config) AddRepo(path, name string) (Repo, bool, error) {
	abs, err := ResolvePath(path)
	if err != nil {
		return Repo{}, false, err
	}

	for _, existing := range c.Repos {
		existingAbs, err := ResolvePath(existing.Path)
		if err == nil && existingAbs == abs {
			return existing, false, nil
		}
	}

	stored := abs
	if len(path) > 0 && path[0] == '~' {
		stored = path
	}

	repo := Repo{
		Path: stored,
		Name: lang.Check(name, filepath.Base(abs)),
	}
	c.Repos = append(c.Repos, repo)
	return repo, true, nil
}

// ResolvePath expands "~" and makes path absolute.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(utils.ExpandHome(path))
	if err != nil {
		return "", errm.Wrap(err, "resolve path "+path)
	}
	return abs, nil
}
