// prune.go implements the "fermi prune" command: bulk deletion of the
// records that failed to load.
//
// Prune is destructive, so it asks for confirmation unless --force is
// given, and --dry-run only lists what would go.

package core

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/format"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/spf13/cobra"
)

// pruneResult is the JSON shape of a prune.
type pruneResult struct {
	Failed  []failure `json:"failed"`
	Deleted int       `json:"deleted"`
	DryRun  bool      `json:"dry_run"`
}

type failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (e *Extension) newPruneCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "prune",
		Short: "Delete records that failed to load",
		Long: `Permanently delete every record folder whose data.json could not be read
or is not a valid record. Backups of those records are removed too.

This is irreversible. Use --dry-run to list them, --force to skip confirmation.`,
		Args: cobra.NoArgs,
		RunE: e.runPrune,
	}
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "List what would be deleted")
	c.Flags().BoolP(extension.FlagForce, "f", false, "Skip confirmation")
	return c
}

func (e *Extension) runPrune(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	svc := e.ctx.Service()
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)
	force, _ := c.Flags().GetBool(extension.FlagForce)

	failed := svc.Failed()
	result := pruneResult{Failed: failures(failed), DryRun: dryRun}

	if len(failed) == 0 {
		if cmd.JSON() {
			return cmd.PrintJSON(result)
		}
		fmt.Fprintln(cmd.Out(), "No invalid records")
		return nil
	}

	if !cmd.JSON() {
		if err := format.Failures(cmd.Out(), failed); err != nil {
			return err
		}
	}

	if dryRun {
		log.Event("core:prune", "delete").Actor(cmd.Actor()).Detail("dry_run", true).Detail("count", len(failed)).Write(nil)
		return cmd.PrintJSON(result)
	}

	if !force && !cmd.JSON() {
		fmt.Fprintf(cmd.Out(), "Permanently delete %d record(s)? This cannot be undone. [y/N] ", len(failed))
		response, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && response == "" {
			return cmd.PrintJSONError(fmt.Errorf("reading confirmation: %w", err))
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.Out(), "Cancelled")
			return nil
		}
	}

	n, err := svc.Prune(ctx)
	result.Deleted = n
	log.Event("core:prune", "delete").Actor(cmd.Actor()).Detail("count", n).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("prune: %w", err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(result)
	}
	fmt.Fprintf(cmd.Out(), "Deleted %d record(s)\n", n)
	return nil
}

func failures(fs []collection.LoadFailure) []failure {
	out := make([]failure, len(fs))
	for i, f := range fs {
		out[i] = failure{ID: f.ID, Error: f.Err.Error()}
	}
	return out
}
