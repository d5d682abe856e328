package cli

import (
	"github.com/gnomegl/drift/internal/utils"
	"github.com/maxbolgarin/logze/v2"
	"github.com/urfave/cli/v2"
)

const helpTemplate = `{{.Name}} - {{.Usage}}

Usage: {{.HelpName}} [global options] <command> [options]

Commands:
   {{range .VisibleCommands}}{{join .Names ", "}}{{"\t"}}{{.Usage}}
   {{end}}
Global options:
   {{range .VisibleFlags}}{{.}}
   {{end}}`

func NewApp() *cli.App {
	cli.AppHelpTemplate = helpTemplate

	return &cli.App{
		Name:    "drift",
		Usage:   "What did my AI agents do while I was away?",
		Version: "v" + utils.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file (default ~/.drift/config.toml)",
				EnvVars: []string{"DRIFT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the session database (default ~/.drift/drift.db)",
				EnvVars: []string{"DRIFT_DB"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output to the console",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logze.Init(logze.C().WithConsole().WithLevel(logze.LevelDebug))
			}
			return nil
		},
		Action: scanAction,
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Usage:  "Scan repos for agent activity",
				Flags:  scanFlags(),
				Action: scanAction,
			},
			{
				Name:  "briefing",
				Usage: "Generate a morning briefing of agent activity",
				Flags: []cli.Flag{
					sinceFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text or md",
						Value:   "text",
					},
				},
				Action: briefingAction,
			},
			{
				Name:   "watch",
				Usage:  "Live tail of agent activity across all repos",
				Action: watchAction,
			},
			{
				Name:      "diff",
				Usage:     "Show aggregate diff for a session",
				ArgsUsage: "<session-id>",
				Action:    diffAction,
			},
			{
				Name:  "config",
				Usage: "Show current configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output format: text or yaml",
						Value:   "text",
					},
				},
				Action: configAction,
			},
			{
				Name:   "init",
				Usage:  "Interactive setup wizard",
				Action: initAction,
			},
			{
				Name:  "history",
				Usage: "Show past agent sessions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of sessions to show",
						Value:   20,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output format: text, json or csv",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "repo",
						Aliases: []string{"r"},
						Usage:   "Only sessions of this repo",
					},
					&cli.StringFlag{
						Name:    "author",
						Aliases: []string{"a"},
						Usage:   "Only sessions whose author contains this",
					},
				},
				Action: historyAction,
			},
		},
		Authors: []*cli.Author{
			{Name: "gnomegl"},
		},
	}
}

func sinceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "since",
		Aliases: []string{"s"},
		Usage:   `Time window (e.g. "12h", "24h", "3 days ago")`,
	}
}

func scanFlags() []cli.Flag {
	return []cli.Flag{
		sinceFlag(),
		&cli.StringFlag{
			Name:    "author",
			Aliases: []string{"a"},
			Usage:   "Filter by author name",
		},
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Filter by repo name",
		},
	}
}
