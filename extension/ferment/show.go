// show.go implements the "fermi show" command.
//
// A terminal gets the record rendered as markdown through glamour; a pipe
// or --raw gets the markdown source, and -o json the stored document.

package ferment

import (
	"fmt"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/format"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/spf13/cobra"
)

func (e *Extension) newShowCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Long:  `Show one record. The id may be abbreviated to any unique prefix.`,
		Args:  cobra.ExactArgs(1),
		RunE:  e.runShow,
	}
	c.Flags().Bool(extension.FlagRaw, false, "Print markdown without terminal rendering")
	return c
}

func (e *Extension) runShow(c *cobra.Command, args []string) error {
	ctx := c.Context()
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	l := log.Event("ferment:show", "read").Actor(cmd.Actor()).Record(args[0])

	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("show %q: %w", args[0], err))
	}
	r, err := e.svc.Get(ctx, id)
	l.Record(id).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("show %q: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(r)
	}
	cmd.PrintMarkdown(format.Markdown(r), raw)
	return nil
}
