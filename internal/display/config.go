package display

import (
	"fmt"
	"strings"

	"github.com/gnomegl/drift/internal/config"
	"github.com/gnomegl/drift/internal/scanner"
	"github.com/maxbolgarin/errm"
	"gopkg.in/yaml.v3"
)

// ConfigText renders the effective configuration for `drift config`.
func ConfigText(cfg *config.Config, path string, exists bool) string {
	var b strings.Builder

	source := path
	if !exists {
		source += dim.Sprint(" (not created yet, showing defaults)")
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", headerColor.Sprint("  Config:"), source)

	fmt.Fprintf(&b, "%s\n", headerColor.Sprint("  General"))
	fmt.Fprintf(&b, "    %s %s\n", dim.Sprintf("%-16s", "default window"), cfg.General.DefaultWindow)
	fmt.Fprintf(&b, "    %s %g minutes\n", dim.Sprintf("%-16s", "session gap"), cfg.General.SessionGapMinutes)
	fmt.Fprintf(&b, "    %s %s\n\n", dim.Sprintf("%-16s", "theme"), cfg.General.Theme)

	fmt.Fprintf(&b, "%s\n", headerColor.Sprintf("  Repos (%d)", len(cfg.Repos)))
	if len(cfg.Repos) == 0 {
		fmt.Fprintf(&b, "    %s\n", dim.Sprint("none, run drift init to add some"))
	}
	for _, r := range cfg.Repos {
		fmt.Fprintf(&b, "    %s %s\n", RepoColor(r.Name).Sprintf("%-16s", r.Name), dim.Sprint(r.Path))
	}

	fmt.Fprintf(&b, "\n%s\n", headerColor.Sprint("  Agent authors"))
	for _, a := range cfg.Agents.Authors {
		fmt.Fprintf(&b, "    %s %s\n", dim.Sprint("·"), a)
	}
	fmt.Fprintf(&b, "\n%s\n", headerColor.Sprint("  Agent message patterns"))
	for _, p := range cfg.Agents.MessagePatterns {
		fmt.Fprintf(&b, "    %s %s\n", dim.Sprint("·"), p)
	}
	return b.String()
}

// ConfigYAML renders the configuration as YAML.
func ConfigYAML(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", errm.Wrap(err, "encode config as yaml")
	}
	return string(out), nil
}

// NoConfig tells the user to run init.
func NoConfig() string {
	return warnColor.Sprint("No configuration found. Run ") + hintColor.Sprint("drift init") + warnColor.Sprint(" to get started.") + "\n"
}

// NoRepos tells the user no repos are configured.
func NoRepos() string {
	return warnColor.Sprint("No repos configured. Run ") + hintColor.Sprint("drift init") + warnColor.Sprint(" to add repos.") + "\n"
}

// ScanWarnings lists repos that could not be scanned.
func ScanWarnings(results []scanner.Result) string {
	var b strings.Builder
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&b, "%s %s: %v\n", warnColor.Sprint("  [!]"), r.Repo.Name, r.Err)
		}
	}
	return b.String()
}
