/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// render.go prints markdown for humans: glamour-rendered on a terminal,
// raw when piped so scripts and LLMs get the source.

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Terminal reports whether stdout is a terminal and output is the real
// stdout.
func Terminal() bool {
	return out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintMarkdown writes content, rendered with glamour when stdout is a
// terminal and raw is false.
func PrintMarkdown(content string, raw bool) {
	if !raw && Terminal() {
		rendered, err := glamour.Render(content, "dark")
		if err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	fmt.Fprint(out, content)
}
