package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gnomegl/drift/internal/differ"
	"github.com/gnomegl/drift/internal/display"
	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/scanner"
	"github.com/gnomegl/drift/internal/service"
	"github.com/gnomegl/drift/internal/session"
	"github.com/gnomegl/drift/internal/store"
	"github.com/maxbolgarin/errm"
	"github.com/urfave/cli/v2"
)

// scan runs a scan with opts, saves the sessions and prints repo warnings.
func (e *env) scan(c *cli.Context, opts scanner.Options) (*service.Report, error) {
	st, err := e.openStore(c)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	sc, err := e.newScanner(true)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	report, err := service.NewOrchestrator(sc, st, e.cfg).Scan(c.Context, opts)
	if err != nil {
		return nil, errm.Wrap(err, "scan repos")
	}
	fmt.Fprint(e.errOut, display.ScanWarnings(report.Results))
	return report, nil
}

func scanAction(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	if !e.requireRepos() {
		return nil
	}

	report, err := e.scan(c, scanner.Options{
		Since:  c.String("since"),
		Author: c.String("author"),
		Repo:   c.String("repo"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(e.out, display.Dashboard(report.Sessions, time.Now()))
	return nil
}

func briefingAction(c *cli.Context) error {
	format := c.String("format")
	if format != display.FormatText && format != display.FormatMarkdown {
		return errm.Errorf("unknown briefing format %q, want text or md", format)
	}

	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	if !e.requireRepos() {
		return nil
	}

	report, err := e.scan(c, scanner.Options{Since: c.String("since")})
	if err != nil {
		return err
	}

	now := time.Now()
	opts := display.BriefingOptions{Format: format, Now: now}
	if format == display.FormatMarkdown {
		opts.RepoURLs = e.repoURLs()
	}
	output := display.Briefing(report.Sessions, opts)

	if format != display.FormatMarkdown {
		fmt.Fprintln(e.out, output)
		return nil
	}

	filename := display.BriefingFilename(now)
	if err := os.WriteFile(filename, []byte(output), 0o644); err != nil {
		return errm.Wrap(err, "write briefing")
	}
	fmt.Fprintln(e.out, color.GreenString("Briefing written to %s", filename))
	return nil
}

func watchAction(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	if !e.requireRepos() {
		return nil
	}

	sc, err := e.newScanner(false)
	if err != nil {
		return err
	}
	defer sc.Close()

	fmt.Fprint(e.out, display.WatchHeader(len(e.cfg.Repos)))

	cfg := service.DefaultWatcherConfig()
	cfg.OnPrimed = func(int) {
		fmt.Fprintln(e.out, display.WatchWaiting())
	}
	watcher := service.NewWatcher(sc, e.cfg.Repos, cfg)

	err = watcher.Run(c.Context, func(commit models.Commit) {
		fmt.Fprintln(e.out, display.CommitLine(commit))
	})
	fmt.Fprint(e.out, display.WatchStopped())
	return err
}

func diffAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowSubcommandHelp(c)
	}
	id := c.Args().First()

	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	st, err := e.openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := st.GetByID(c.Context, id)
	if errors.Is(err, store.ErrNotFound) {
		if total, countErr := st.Count(c.Context); countErr == nil && total == 0 {
			fmt.Fprintln(e.out, display.NoHistory())
			return nil
		}
		fmt.Fprint(e.out, display.SessionNotFound(id))
		return nil
	}
	if err != nil {
		return errm.Wrap(err, "load session")
	}

	d := differ.New(e.git)
	fmt.Fprintln(e.out, display.SessionDetail(*s, d.Stats(c.Context, *s)))

	fmt.Fprint(e.out, color.New(color.Faint).Sprint("\n  Full diff:\n\n"))
	if diff := d.Diff(c.Context, *s); diff != "" {
		fmt.Fprintln(e.out, display.ColorizeDiff(diff))
	}
	return nil
}

func configAction(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}

	switch output := c.String("output"); output {
	case "text":
		fmt.Fprintln(e.out, display.ConfigText(e.cfg, e.app.ConfigPath, e.exists))
	case "yaml":
		out, err := display.ConfigYAML(e.cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(e.out, out)
	default:
		return errm.Errorf("unknown config output %q, want text or yaml", output)
	}
	return nil
}

func historyAction(c *cli.Context) error {
	output := c.String("output")
	if output != "text" && output != "json" && output != "csv" {
		return errm.Errorf("unknown history output %q, want text, json or csv", output)
	}

	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	st, err := e.openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.List(c.Context, c.Int("limit"))
	if err != nil {
		return errm.Wrap(err, "list sessions")
	}
	sessions = session.Filter(sessions, c.String("repo"), c.String("author"))

	switch output {
	case "json":
		return display.ExportJSON(e.out, sessions)
	case "csv":
		return display.ExportCSV(e.out, sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(e.out, display.NoHistory())
		return nil
	}
	fmt.Fprintln(e.out, display.HistoryHeader(len(sessions)))
	fmt.Fprintln(e.out, display.Dashboard(sessions, time.Now()))
	return nil
}
