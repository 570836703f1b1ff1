/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Extensions read these through the exported accessors rather than the
// variables, so they never couple to cobra's flag lookup.

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/goccy/go-json"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

var validOutputFormats = []string{"json"}

var (
	output string
	root   string
	today  string
)

// out is the output writer for commands. Defaults to os.Stdout.
// Tests can replace this to capture output.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// Output returns the output format flag value.
func Output() string { return output }

// Root returns the process-only storage root.
// Priority: --root flag > FERMI_ROOT env var > empty (use config).
func Root() string {
	if root != "" {
		return root
	}
	return os.Getenv("FERMI_ROOT")
}

// Today returns the reference date for due and overdue checks.
// Priority: --today flag > FERMI_TODAY env var > empty (the local date).
func Today() string {
	if today != "" {
		return today
	}
	return os.Getenv("FERMI_TODAY")
}

// TodayDate returns Today as a record date, or "" for the local date.
// The value is validated before any command runs.
func TodayDate() record.Date {
	d, err := record.ParseDate(Today())
	if err != nil {
		return ""
	}
	return d
}

// Actor names who ran the command in the audit log: the OS user.
func Actor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON.
// Returns nil if error was printed (suppressing Cobra error), or the original error if not.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return ErrReported
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "Storage root for this invocation (overrides config)")
	rootCmd.PersistentFlags().StringVar(&today, "today", "", "Reference date YYYY-MM-DD for due/overdue (default: local date)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
