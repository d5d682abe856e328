package display

import (
	"fmt"

	"github.com/gnomegl/drift/internal/models"
	"github.com/gnomegl/drift/internal/utils"
)

func WatchHeader(repos int) string {
	return "\n" + titleColor.Sprint("  drift watch") + dim.Sprint(" · live agent activity") + "\n" +
		dim.Sprintf("  Watching %d %s. Press Ctrl+C to stop.", repos, utils.Pluralize(repos, "repo")) + "\n\n" +
		dim.Sprint("  "+separator(68)) + "\n"
}

func WatchWaiting() string {
	return dim.Sprint("  Waiting for agent activity...") + "\n"
}

func WatchStopped() string {
	return "\n" + dim.Sprint("  Stopped watching.") + "\n"
}

// CommitLine is one live commit in watch output.
func CommitLine(c models.Commit) string {
	return fmt.Sprintf("  %s %s %s %s %s %s",
		dim.Sprint(utils.FormatTime(c.Date)),
		RepoColor(c.Repo).Sprintf("[%s]", c.Repo),
		hashColor.Sprint(c.HashShort),
		utils.Truncate(c.Message, 60),
		dim.Sprintf("+%d/-%d", c.Insertions, c.Deletions),
		dim.Sprint(c.Author))
}
