// ls.go implements the "fermi ls" command for listing records.
//
// Filters combine: --state, --container and --search narrow the set and
// --where applies an expression over record fields. -l adds state, dates
// and due/overdue markers.

package ferment

import (
	"fmt"
	"io"
	"strings"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/ls"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

func (e *Extension) newLsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ls",
		Short: "List records",
		Long: `List records, sorted by end date.

  fermi ls                          # every record
  fermi ls --state provisional -l   # active batches with dates
  fermi ls --search cabbage         # name, container, notes, ingredients
  fermi ls --where 'stars >= 4' --sort name

Run 'fermi guide query' for the expression syntax.`,
		Args: cobra.NoArgs,
		RunE: e.runLs,
	}
	c.Flags().String(extension.FlagState, "", "Filter by state: provisional, completed, failed")
	c.Flags().StringP(extension.FlagContainer, "c", "", "Filter by container")
	c.Flags().StringP(extension.FlagSearch, "s", "", "Free-text filter")
	c.Flags().StringP(extension.FlagWhere, "w", "", "Expression filter")
	c.Flags().String(extension.FlagSort, "", "Sort by: "+strings.Join(query.SortKeys(), ", "))
	c.Flags().BoolP(extension.FlagReverse, "R", false, "Reverse sort order")
	c.Flags().IntP(extension.FlagLimit, "n", 0, "Limit number of records")
	c.Flags().BoolP(extension.FlagLong, "l", false, "Long format with state and dates")

	_ = c.RegisterFlagCompletionFunc(extension.FlagSort, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return query.SortKeys(), cobra.ShellCompDirectiveNoFileComp
	})
	return c
}

func (e *Extension) runLs(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	var opts ls.Options
	state, _ := c.Flags().GetString(extension.FlagState)
	opts.State = record.State(state)
	opts.Container, _ = c.Flags().GetString(extension.FlagContainer)
	opts.Search, _ = c.Flags().GetString(extension.FlagSearch)
	opts.Where, _ = c.Flags().GetString(extension.FlagWhere)
	opts.Sort, _ = c.Flags().GetString(extension.FlagSort)
	opts.Reverse, _ = c.Flags().GetBool(extension.FlagReverse)
	opts.Limit, _ = c.Flags().GetInt(extension.FlagLimit)
	opts.Long, _ = c.Flags().GetBool(extension.FlagLong)
	opts.Today = cmd.TodayDate()

	if opts.Limit < 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be >= 0, got %d", opts.Limit))
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := ls.Run(ctx, w, e.svc, opts)

	log.Event("ferment:ls", "list").
		Actor(cmd.Actor()).
		Detail("where", opts.Where).
		Detail("count", len(result.Records)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls: %w", err))
	}
	return cmd.PrintJSON(result)
}
