// rm.go implements the "fermi rm" command.
//
// Deletion removes the record folder with its backups. The removed record
// is written to stdout in the stored format, so it can be kept and put
// back with "fermi add --from-json".

package ferment

import (
	"fmt"
	"os"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

func (e *Extension) newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a record",
		Long: `Delete a record and its backups. The removed record is printed so it
can be restored:

  fermi rm abc123 > abc123.json
  fermi add --from-json abc123.json`,
		Args: cobra.ExactArgs(1),
		RunE: e.runRm,
	}
}

func (e *Extension) runRm(c *cobra.Command, args []string) error {
	ctx := c.Context()
	l := log.Event("ferment:rm", "delete").Actor(cmd.Actor()).Record(args[0])

	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("rm %q: %w", args[0], err))
	}

	prev, err := e.svc.Delete(ctx, id)
	l.Record(id).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm %q: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(prev)
	}
	data, err := record.Marshal(prev)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Deleted %s (%s)\n", prev.ID, prev.Name)
	fmt.Fprintln(cmd.Out(), string(data))
	return nil
}
