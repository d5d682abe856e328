package config

import (
	"github.com/maxbolgarin/lang"
	"github.com/urfave/cli/v2"
)

// AppConfig holds the global command-line settings shared by every command.
type AppConfig struct {
	ConfigPath string
	DBPath     string
	Verbose    bool
}

// ParseAppConfig reads the global flags, falling back to the default
// locations under ~/.drift.
func ParseAppConfig(c *cli.Context) *AppConfig {
	return &AppConfig{
		ConfigPath: lang.Check(c.String("config"), DefaultPath()),
		DBPath:     lang.Check(c.String("db"), DefaultDBPath()),
		Verbose:    c.Bool("verbose"),
	}
}
