// lifecycle.go implements "fermi complete" and "fermi fail", the two ways
// an active batch finishes.

package ferment

import (
	"fmt"
	"strings"

	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/spf13/cobra"
)

// ratingFlags lists the star flags in display order.
var ratingFlags = []string{
	extension.FlagOverall,
	extension.FlagTaste,
	extension.FlagAroma,
	extension.FlagTexture,
	extension.FlagAppearance,
}

func (e *Extension) newCompleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "complete <id>",
		Short: "Finish a batch and rate it",
		Long: `Move an active batch to completed, with optional 1-5 star ratings.

  fermi complete abc123 --overall 4 --taste 5 --notes "bright and sour"

--date defaults to today. Unrated aspects are left empty.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runComplete,
	}
	c.Flags().String(extension.FlagDate, "", "Completion date YYYY-MM-DD (default: today)")
	for _, name := range ratingFlags {
		c.Flags().Int(name, 0, strings.ToUpper(name[:1])+name[1:]+" stars, 1-5")
	}
	c.Flags().String(extension.FlagNotes, "", "Tasting notes for the overall rating")
	return c
}

func (e *Extension) runComplete(c *cobra.Command, args []string) error {
	ctx := c.Context()
	l := log.Event("ferment:complete", "update").Actor(cmd.Actor()).Record(args[0])

	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("complete %q: %w", args[0], err))
	}
	at, err := dateFlag(c, extension.FlagDate, cmd.TodayDate())
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}
	ratings, err := ratingsFromFlags(c)
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}

	r, err := e.svc.Complete(ctx, id, at, ratings)
	l.Record(id).Detail("completed_at", string(at)).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("complete %q: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(r)
	}
	fmt.Fprintf(cmd.Out(), "Completed %s (%s)\n", r.ID, r.Name)
	return nil
}

// ratingsFromFlags reads the star flags. Zero means unrated; other values
// are range-checked by the record schema.
func ratingsFromFlags(c *cobra.Command) (record.Ratings, error) {
	var rs record.Ratings
	slots := map[string]*record.Rating{
		extension.FlagOverall:    &rs.Overall,
		extension.FlagTaste:      &rs.Taste,
		extension.FlagAroma:      &rs.Aroma,
		extension.FlagTexture:    &rs.Texture,
		extension.FlagAppearance: &rs.Appearance,
	}
	for _, name := range ratingFlags {
		n, _ := c.Flags().GetInt(name)
		if n == 0 {
			continue
		}
		if n < 1 || n > 5 {
			return rs, fmt.Errorf("--%s must be between 1 and 5, got %d", name, n)
		}
		slots[name].Stars = record.Stars(n)
	}
	rs.Overall.Notes, _ = c.Flags().GetString(extension.FlagNotes)
	return rs, nil
}

func (e *Extension) newFailCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "fail <id>",
		Short: "Mark a batch as failed",
		Long: `Move an active batch to failed. A reason is required.

  fermi fail abc123 --reason "kahm yeast took over"`,
		Args: cobra.ExactArgs(1),
		RunE: e.runFail,
	}
	c.Flags().StringP(extension.FlagReason, "r", "", "Why the batch failed (required)")
	c.Flags().String(extension.FlagDate, "", "Failure date YYYY-MM-DD (default: today)")
	return c
}

func (e *Extension) runFail(c *cobra.Command, args []string) error {
	ctx := c.Context()
	l := log.Event("ferment:fail", "update").Actor(cmd.Actor()).Record(args[0])

	reason, _ := c.Flags().GetString(extension.FlagReason)
	if strings.TrimSpace(reason) == "" {
		err := fmt.Errorf("--%s is required", extension.FlagReason)
		l.Write(err)
		return cmd.PrintJSONError(err)
	}
	id, err := resolve(ctx, e.svc, args[0])
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("fail %q: %w", args[0], err))
	}
	at, err := dateFlag(c, extension.FlagDate, cmd.TodayDate())
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}

	r, err := e.svc.Fail(ctx, id, reason, at)
	l.Record(id).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("fail %q: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(r)
	}
	fmt.Fprintf(cmd.Out(), "Failed %s (%s): %s\n", r.ID, r.Name, reason)
	return nil
}
