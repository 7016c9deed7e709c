package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the dfa banner and version to w.
// Colors degrade to plain text when w is not a color terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	lines := []struct {
		text  string
		color string
	}{
		{"     _  __       ", "#818cf8"},
		{"  __| |/ _| __ _ ", "#a78bfa"},
		{" / _` | |_ / _` |", "#c084fc"},
		{"| (_| |  _| (_| |", "#e879f9"},
		{" \\__,_|_|  \\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
