package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/display"
	"github.com/gnomegl/drift/internal/git"
	"github.com/gnomegl/drift/internal/scanner"
	"github.com/gnomegl/drift/internal/store"
	"github.com/maxbolgarin/errm"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// env carries what every command resolves from the global flags.
type env struct {
	app    *config.AppConfig
	cfg    *config.Config
	exists bool
	git    *git.CLI
	out    io.Writer
	errOut io.Writer
}

func loadEnv(c *cli.Context) (*env, error) {
	app := config.ParseAppConfig(c)
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, errm.Wrap(err, "load config")
	}
	return &env{
		app:    app,
		cfg:    cfg,
		exists: config.Exists(app.ConfigPath),
		git:    git.New(),
		out:    writerOr(c.App.Writer, os.Stdout),
		errOut: writerOr(c.App.ErrWriter, os.Stderr),
	}, nil
}

// requireRepos prints a hint and returns false when there is nothing to scan.
func (e *env) requireRepos() bool {
	if !e.exists {
		fmt.Fprint(e.out, display.NoConfig())
		return false
	}
	if len(e.cfg.Repos) == 0 {
		fmt.Fprint(e.out, display.NoRepos())
		return false
	}
	return true
}

func (e *env) openStore(c *cli.Context) (*store.Store, error) {
	st, err := store.Open(c.Context, store.Config{Path: e.app.DBPath})
	if err != nil {
		return nil, errm.Wrap(err, "open session database")
	}
	return st, nil
}

func (e *env) newScanner(progress bool) (*scanner.Scanner, error) {
	cfg := scanner.DefaultConfig()
	if progress && isTerminal(e.errOut) {
		cfg.Progress = e.errOut
	}
	sc, err := scanner.New(e.git, e.cfg, cfg)
	if err != nil {
		return nil, errm.Wrap(err, "create scanner")
	}
	return sc, nil
}

// repoURLs maps repo names to browsable origin URLs, skipping repos
// without a recognised remote.
func (e *env) repoURLs() map[string]string {
	urls := make(map[string]string, len(e.cfg.Repos))
	for _, repo := range e.cfg.Repos {
		path, err := config.ResolvePath(repo.Path)
		if err != nil {
			continue
		}
		remote, err := e.git.OriginURL(path)
		if err != nil {
			continue
		}
		if web := git.WebURL(remote); web != "" {
			urls[repo.Name] = web
		}
	}
	return urls
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
