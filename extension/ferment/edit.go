// edit.go implements the "fermi edit" command. Only the flags given are
// changed; --ingredient replaces the whole ingredient list.

package ferment

import (
	"fmt"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

func (e *Extension) newEditCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a record",
		Long: `Change fields of a record in any state. The previous version becomes
backup 1.

  fermi edit abc123 --end 2026-04-08
  fermi edit abc123 --notes "moved to the cellar"`,
		Args: cobra.ExactArgs(1),
		RunE: e.runEdit,
	}
	c.Flags().String(extension.FlagName, "", "Batch name")
	c.Flags().String(extension.FlagStart, "", "Start date YYYY-MM-DD")
	c.Flags().String(extension.FlagEnd, "", "End date YYYY-MM-DD")
	c.Flags().StringP(extension.FlagContainer, "c", "", "Container (empty to clear)")
	c.Flags().String(extension.FlagNotes, "", "Notes (empty to clear)")
	c.Flags().StringArrayP(extension.FlagIngredient, "i", nil, "Ingredient name:quantity:unit (repeatable, replaces all)")
	return c
}

func (e *Extension) runEdit(c *cobra.Command, args []string) error {
	ctx := c.Context()
	l := log.Event("ferment:edit", "update").Actor(cmd.Actor()).Record(args[0])

	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("edit %q: %w", args[0], err))
	}

	mutate, changed, err := editMutator(c)
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("edit %q: %w", id, err))
	}
	if len(changed) == 0 {
		return cmd.PrintJSONError(fmt.Errorf("edit %q: nothing to change", id))
	}

	r, err := e.svc.Update(ctx, id, mutate)
	l.Record(id).Detail("fields", changed).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("edit %q: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(r)
	}
	fmt.Fprintf(cmd.Out(), "Updated %s (%s)\n", r.ID, r.Name)
	return nil
}

// editMutator builds the update from the flags that were set and returns
// the names of the fields it touches.
func editMutator(c *cobra.Command) (func(record.Record) (record.Record, error), []string, error) {
	flags := c.Flags()
	var changed []string
	var fns []func(*record.Record)

	if flags.Changed(extension.FlagName) {
		v, _ := flags.GetString(extension.FlagName)
		fns = append(fns, func(r *record.Record) { r.Name = v })
		changed = append(changed, "name")
	}
	for _, f := range []struct {
		flag  string
		field string
		set   func(*record.Record, record.Date)
	}{
		{extension.FlagStart, "startDate", func(r *record.Record, d record.Date) { r.StartDate = d }},
		{extension.FlagEnd, "endDate", func(r *record.Record, d record.Date) { r.EndDate = d }},
	} {
		if !flags.Changed(f.flag) {
			continue
		}
		d, err := dateFlag(c, f.flag, "")
		if err != nil {
			return nil, nil, err
		}
		set := f.set
		fns = append(fns, func(r *record.Record) { set(r, d) })
		changed = append(changed, f.field)
	}
	if flags.Changed(extension.FlagContainer) {
		v, _ := flags.GetString(extension.FlagContainer)
		fns = append(fns, func(r *record.Record) { r.Container = v })
		changed = append(changed, "container")
	}
	if flags.Changed(extension.FlagNotes) {
		v, _ := flags.GetString(extension.FlagNotes)
		fns = append(fns, func(r *record.Record) { r.Notes = v })
		changed = append(changed, "notes")
	}
	if flags.Changed(extension.FlagIngredient) {
		values, _ := flags.GetStringArray(extension.FlagIngredient)
		ings, err := parseIngredients(values)
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, func(r *record.Record) { r.Ingredients = ings })
		changed = append(changed, "ingredients")
	}

	return func(r record.Record) (record.Record, error) {
		for _, fn := range fns {
			fn(&r)
		}
		return r, nil
	}, changed, nil
}
