package art

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/gnomegl/drift/internal/utils"
)

func Logo() string {
	return figure.NewFigure("drift", "chunky", false).String()
}

func PrintLogo(w io.Writer) {
	fmt.Fprint(w, color.CyanString("%s", Logo()))
	fmt.Fprintf(w, "           %s\n\n", color.HiRedString("v%s by gnomegl", utils.GetVersion()))
}
