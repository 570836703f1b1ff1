// views.go implements due, overdue and where: listings printed in the
// long format so dates and markers are visible.

package query

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/format"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/ls"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

func (e *Extension) newDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List active batches ending today",
		Long:  `List provisional records whose end date is today. Use --today to check another day.`,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return e.runDated(c, "due", e.svc.Due)
		},
	}
}

func (e *Extension) newOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List active batches past their end date",
		Long:  `List provisional records whose end date has passed.`,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return e.runDated(c, "overdue", e.svc.Overdue)
		},
	}
}

func (e *Extension) runDated(c *cobra.Command, name string, fn func(context.Context, record.Date) ([]record.Record, error)) error {
	today := cmd.TodayDate()
	if today == "" {
		today = record.Today()
	}

	rs, err := fn(c.Context(), today)
	log.Event("query:"+name, "list").Actor(cmd.Actor()).Detail("today", string(today)).Detail("count", len(rs)).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("%s: %w", name, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(ls.Result{Records: rs})
	}
	if len(rs) == 0 {
		fmt.Fprintf(cmd.Out(), "Nothing %s\n", name)
		return nil
	}
	return format.Long(cmd.Out(), rs, today)
}

func (e *Extension) newWhereCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "where <expression>",
		Short: "List records matching an expression",
		Long: `List records matching an expression over record fields.

  fermi where 'state == "completed" && stars >= 4'
  fermi where 'container == "Crock" && endDate < today'
  fermi where '"salt" in ingredients' --sort startDate

Run 'fermi guide query' for every field and operator.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runWhere,
	}
	c.Flags().String(extension.FlagSort, query.SortEndDate, "Sort by: "+strings.Join(query.SortKeys(), ", "))
	c.Flags().BoolP(extension.FlagReverse, "R", false, "Reverse sort order")
	c.Flags().IntP(extension.FlagLimit, "n", 0, "Limit number of records")
	return c
}

func (e *Extension) runWhere(c *cobra.Command, args []string) error {
	opts := ls.Options{Where: args[0], Long: true, Today: cmd.TodayDate()}
	opts.Sort, _ = c.Flags().GetString(extension.FlagSort)
	opts.Reverse, _ = c.Flags().GetBool(extension.FlagReverse)
	opts.Limit, _ = c.Flags().GetInt(extension.FlagLimit)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := ls.Run(c.Context(), w, e.svc, opts)
	log.Event("query:where", "list").Actor(cmd.Actor()).Detail("where", args[0]).Detail("count", len(result.Records)).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("where: %w", err))
	}
	return cmd.PrintJSON(result)
}
