// log.go implements the "fermi log" command: the newest audit entries.

package core

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/format"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "log",
		Short: "Show recent audit log entries",
		Long: `Show the newest entries of the audit log, across every storage root.

The log lives in ~/.fermi/log/fermi-log.db.`,
		Args: cobra.NoArgs,
		RunE: runLog,
	}
	c.Flags().IntP(extension.FlagLimit, "n", 20, "Number of entries")
	return c
}

func runLog(c *cobra.Command, _ []string) error {
	n, _ := c.Flags().GetInt(extension.FlagLimit)
	if n <= 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be > 0, got %d", n))
	}

	entries, err := log.Recent(n)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("read audit log: %w", err))
	}
	if cmd.JSON() {
		return cmd.PrintJSON(entries)
	}

	tw := tabwriter.NewWriter(cmd.Out(), 0, 4, 2, ' ', 0)
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "error: " + e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			time.UnixMilli(e.Start).Local().Format("2006-01-02 15:04:05"),
			e.Source, e.Actor, format.Short(e.Record), status)
	}
	return tw.Flush()
}
