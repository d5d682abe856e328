package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/gnomegl/drift/internal/art"
	"github.com/gnomegl/drift/internal/config"
	"github.com/maxbolgarin/errm"
	"github.com/urfave/cli/v2"
)

var (
	promptColor  = color.New(color.FgCyan)
	faintColor   = color.New(color.Faint)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	noticeColor  = color.New(color.FgYellow)
	wizardHeader = color.New(color.Bold, color.FgWhite)
)

// wizard reads answers line by line. EOF is an empty answer.
type wizard struct {
	in  *bufio.Scanner
	out io.Writer
}

func (w *wizard) ask(prompt string) string {
	fmt.Fprint(w.out, prompt)
	if !w.in.Scan() {
		return ""
	}
	return strings.TrimSpace(w.in.Text())
}

func initAction(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if c.App.Reader != nil {
		in = c.App.Reader
	}
	w := &wizard{in: bufio.NewScanner(in), out: e.out}

	art.PrintLogo(e.errOut)
	fmt.Fprintln(e.out, wizardHeader.Sprint("\n  drift init")+faintColor.Sprint(" · setup wizard\n"))

	e.addRepos(w)

	fmt.Fprintln(e.out)
	authors := w.ask(promptColor.Sprint("  Agent authors ") +
		faintColor.Sprintf("[%s]: ", strings.Join(e.cfg.Agents.Authors, ", ")))
	if authors != "" {
		var parsed []string
		for _, a := range strings.Split(authors, ",") {
			if a = strings.TrimSpace(a); a != "" {
				parsed = append(parsed, a)
			}
		}
		if len(parsed) > 0 {
			e.cfg.Agents.Authors = parsed
		}
	}

	window := w.ask(promptColor.Sprint("  Default time window ") +
		faintColor.Sprintf("[%s]: ", e.cfg.General.DefaultWindow))
	if window != "" {
		e.cfg.General.DefaultWindow = window
	}

	if err := config.Save(e.app.ConfigPath, e.cfg); err != nil {
		return errm.Wrap(err, "save config")
	}

	fmt.Fprintln(e.out, okColor.Sprint("\n  Configuration saved!"))
	fmt.Fprintln(e.out, faintColor.Sprint("  Run ")+promptColor.Sprint("drift scan")+faintColor.Sprint(" to scan for agent activity."))
	fmt.Fprintln(e.out, faintColor.Sprint("  Run ")+promptColor.Sprint("drift config")+faintColor.Sprint(" to view your settings.\n"))
	return nil
}

// addRepos prompts for repository paths until an empty answer.
func (e *env) addRepos(w *wizard) {
	fmt.Fprintln(e.out, faintColor.Sprint("  Add git repositories to monitor for agent activity."))
	fmt.Fprintln(e.out, faintColor.Sprint("  Enter paths (relative or absolute). Empty line to finish.\n"))

	for {
		path := w.ask(promptColor.Sprint("  Repo path: "))
		if path == "" {
			return
		}

		abs, err := config.ResolvePath(path)
		if err != nil {
			fmt.Fprintln(e.out, failColor.Sprintf("    %v", err))
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			fmt.Fprintln(e.out, failColor.Sprintf("    Path not found: %s", abs))
			continue
		}
		if !e.git.IsRepository(abs) {
			fmt.Fprintln(e.out, failColor.Sprintf("    Not a git repository: %s", abs))
			continue
		}

		base := filepath.Base(abs)
		name := w.ask(faintColor.Sprintf("  Name [%s]: ", base))

		repo, added, err := e.cfg.AddRepo(path, name)
		if err != nil {
			fmt.Fprintln(e.out, failColor.Sprintf("    %v", err))
			continue
		}
		if !added {
			fmt.Fprintln(e.out, noticeColor.Sprintf("    Already configured: %s", repo.Name))
			continue
		}
		fmt.Fprintln(e.out, okColor.Sprintf("    Added: %s", repo.Name)+faintColor.Sprintf(" (%s)\n", abs))
	}
}
