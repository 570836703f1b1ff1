// guide.go implements the "fermi guide" command.
//
// Guides are embedded in the binary via the guide package, so the
// documentation is always available. Terminal output gets glamour
// rendering; pipes get raw markdown for LLM context loading.

package core

import (
	"fmt"
	"strings"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/guide"
	"github.com/spf13/cobra"
)

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show the fermi usage guide",
		Long: `Outputs the fermi guide for humans and LLMs.

  fermi guide           # main guide
  fermi guide records   # record fields and lifecycle
  fermi guide query     # filters, sorting and expressions`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			content, err := guide.Get(name)
			if err != nil {
				available, listErr := guide.List()
				if listErr != nil {
					return listErr
				}
				return cmd.PrintJSONError(fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", ")))
			}

			if cmd.JSON() {
				return cmd.PrintJSON(map[string]string{"topic": name, "content": content})
			}
			cmd.PrintMarkdown(content, false)
			return nil
		},
	}
}
