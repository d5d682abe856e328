// Package display renders sessions for the terminal and for documents.
// Every renderer returns a string or writes to an io.Writer; nothing here
// prints directly.
package display

import (
	"hash/fnv"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	titleColor  = color.New(color.Bold, color.FgHiWhite)
	headerColor = color.New(color.Bold, color.FgCyan)
	dim         = color.New(color.Faint)
	branchColor = color.New(color.FgYellow)
	hashColor   = color.New(color.FgYellow)
	prColor     = color.New(color.FgBlue)
	addColor    = color.New(color.FgGreen)
	delColor    = color.New(color.FgRed)
	hunkColor   = color.New(color.FgCyan)
	hintColor   = color.New(color.FgCyan)
	warnColor   = color.New(color.FgYellow)
)

var repoPalette = []*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
	color.New(color.FgBlue),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgRed),
	color.New(color.FgHiCyan),
	color.New(color.FgHiMagenta),
}

// RepoColor picks a stable color for a repo name. The same name always
// gets the same color, independent of which other repos are shown.
func RepoColor(repo string) *color.Color {
	return repoPalette[repoColorIndex(repo)]
}

func repoColorIndex(repo string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(repo))
	return int(h.Sum32() % uint32(len(repoPalette)))
}

// boxColors maps the named border colors used by the renderers to ANSI
// color numbers.
var boxColors = map[string]lipgloss.Color{
	"cyan":   lipgloss.Color("6"),
	"yellow": lipgloss.Color("3"),
	"gray":   lipgloss.Color("8"),
}

// box draws a rounded border around content.
func box(content, border string, padY, padX int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(boxColors[border]).
		Padding(padY, padX)
	return style.Render(content)
}

type terminalInfo struct {
	width      int
	maxDisplay int
}

func getTerminalInfo() *terminalInfo {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return &terminalInfo{
		width:      width,
		maxDisplay: min(width-4, 120),
	}
}

// messageWidth is how much of a commit subject fits on a row after an
// indent of the given width.
func messageWidth(indent int) int {
	return max(min(getTerminalInfo().maxDisplay-indent, 60), 20)
}

func separator(width int) string {
	return strings.Repeat("─", width)
}

func changes(insertions, deletions int) string {
	return addColor.Sprintf("+%d", insertions) + dim.Sprint("/") + delColor.Sprintf("-%d", deletions)
}
