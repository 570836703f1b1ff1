// add.go implements the "fermi add" command for starting a batch.
//
// A record comes either from flags or, with --from-json, from a document
// in the stored format. The latter is how a record removed by rm is put
// back: the id and timestamps in the document are kept.

package ferment

import (
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/duration"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

func (e *Extension) newAddCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "add",
		Short: "Start a new batch",
		Long: `Start a new batch in the provisional state.

  fermi add --name "Sauerkraut" --end 2026-04-01 \
    --container "2L crock" --ingredient cabbage:1.2:kg --ingredient salt:24:g

  fermi add --from-json saved.json    # re-insert a removed record
  fermi rm abc123 | fermi add --from-json -

  fermi add --name "Kefir" --for 2d   # end date from a duration

--start defaults to today. --for takes days (d), weeks (w) or calendar
months (m) instead of --end. Ingredients are name:quantity:unit.`,
		Args: cobra.NoArgs,
		RunE: e.runAdd,
	}
	c.Flags().String(extension.FlagName, "", "Batch name")
	c.Flags().String(extension.FlagStart, "", "Start date YYYY-MM-DD (default: today)")
	c.Flags().String(extension.FlagEnd, "", "Planned end date YYYY-MM-DD")
	c.Flags().String(extension.FlagFor, "", "Fermentation length instead of --end: 10d, 3w, 2m")
	c.MarkFlagsMutuallyExclusive(extension.FlagEnd, extension.FlagFor)
	c.Flags().StringP(extension.FlagContainer, "c", "", "Container")
	c.Flags().String(extension.FlagNotes, "", "Notes")
	c.Flags().StringArrayP(extension.FlagIngredient, "i", nil, "Ingredient name:quantity:unit (repeatable)")
	c.Flags().String(extension.FlagFromJSON, "", `Read the record from a JSON file ("-" for stdin)`)
	return c
}

func (e *Extension) runAdd(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	l := log.Event("ferment:add", "insert").Actor(cmd.Actor())

	r, err := e.recordFromFlags(c)
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("add: %w", err))
	}

	added, err := e.svc.Add(ctx, r)
	l.Record(added.ID).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("add: %w", err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(added)
	}
	fmt.Fprintf(cmd.Out(), "Added %s (%s)\n", added.ID, added.Name)
	return nil
}

func (e *Extension) recordFromFlags(c *cobra.Command) (record.Record, error) {
	if src, _ := c.Flags().GetString(extension.FlagFromJSON); src != "" {
		return readRecord(src)
	}

	name, _ := c.Flags().GetString(extension.FlagName)
	if name == "" {
		return record.Record{}, fmt.Errorf("--%s is required", extension.FlagName)
	}
	today := cmd.TodayDate()
	if today == "" {
		today = record.Today()
	}
	start, err := dateFlag(c, extension.FlagStart, today)
	if err != nil {
		return record.Record{}, err
	}
	end, err := dateFlag(c, extension.FlagEnd, "")
	if err != nil {
		return record.Record{}, err
	}
	if span, _ := c.Flags().GetString(extension.FlagFor); span != "" {
		d, err := duration.Parse(span)
		if err != nil {
			return record.Record{}, fmt.Errorf("--%s: %w", extension.FlagFor, err)
		}
		if end, err = d.After(start); err != nil {
			return record.Record{}, err
		}
	}
	if end == "" {
		return record.Record{}, fmt.Errorf("--%s or --%s is required", extension.FlagEnd, extension.FlagFor)
	}
	values, _ := c.Flags().GetStringArray(extension.FlagIngredient)
	ingredients, err := parseIngredients(values)
	if err != nil {
		return record.Record{}, err
	}

	r := record.Record{
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		Ingredients: ingredients,
		Details:     record.Provisional{},
	}
	r.Container, _ = c.Flags().GetString(extension.FlagContainer)
	r.Notes, _ = c.Flags().GetString(extension.FlagNotes)
	return r, nil
}

// readRecord parses a stored-format document from path, or stdin for "-".
func readRecord(path string) (record.Record, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("read %s: %w", path, err)
	}
	return record.Parse(data)
}
