// suggest.go implements the ingredients, containers and units commands:
// the distinct values in use, in locale order, as offered for completion.

package query

import (
	"fmt"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/spf13/cobra"
)

func (e *Extension) newSuggestCmd(name string, kind service.Suggestion, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			values, err := e.svc.Suggest(c.Context(), kind, nil)
			log.Event("query:"+name, "list").Actor(cmd.Actor()).Detail("count", len(values)).Write(err)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("%s: %w", name, err))
			}
			if cmd.JSON() {
				if values == nil {
					values = []string{}
				}
				return cmd.PrintJSON(values)
			}
			for _, v := range values {
				fmt.Fprintln(cmd.Out(), v)
			}
			return nil
		},
	}
}
