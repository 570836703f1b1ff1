/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// PersistentPreRunE initialises the record service lazily: only commands
// that need records trigger extension init, so config, guide and version
// work even when the storage root is unreachable. The noStoreCommands map
// controls which commands skip initialisation.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

// ErrReported marks an error whose details were already printed. The
// process still exits non-zero but nothing more is written.
var ErrReported = errors.New("error reported")

var rootCmd = &cobra.Command{
	Use:   "fermi",
	Short: "Track fermentation batches from jar to tasting",
	Long: `fermi keeps one JSON file per fermentation batch under a storage root,
with rotating backups, live queries over the loaded records and an MCP
server for LLM clients.

Run 'fermi guide' to get started.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}
		if t := Today(); t != "" {
			if _, err := record.ParseDate(t); err != nil {
				return PrintJSONError(fmt.Errorf("--today: %w", err))
			}
		}

		if !noStoreCommands[topLevelCmdName(cmd)] {
			if err := initExtensions(); err != nil {
				return PrintJSONError(fmt.Errorf("initialise extensions: %w", err))
			}
		}
		return nil
	},
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "fermi config storage.root", returns "config".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, registers extensions, executes the command, and
// closes the record service so pending writes finish before exit.
// Exit code 1 indicates error.
func Execute() {
	logging.Init(logging.ConfigFromEnv())

	if err := log.Open(); err != nil {
		logging.Warn().Err(err).Msg("audit log unavailable")
	}
	defer log.Close()

	registerExtensions()
	err := rootCmd.Execute()

	if closeErr := closeService(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", closeErr)
	}

	if err != nil {
		if !errors.Is(err, ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		log.Close()
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}
