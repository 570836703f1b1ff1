// Package ferment provides the record extension: listing, viewing and
// editing batches through their lifecycle, plus backup history.
// Registers commands: ls, show, add, edit, complete, fail, rm, restore,
// history, diff.
package ferment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the ferment extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "ferment".
func (e *Extension) Name() string { return "ferment" }

// Init connects to the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the record commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newLsCmd(),
		e.newShowCmd(),
		e.newAddCmd(),
		e.newEditCmd(),
		e.newCompleteCmd(),
		e.newFailCmd(),
		e.newRmCmd(),
		e.newRestoreCmd(),
		e.newHistoryCmd(),
		e.newDiffCmd(),
	}
}

// MCPTools returns nil: record tools are provided by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// ErrAmbiguous is returned when an id prefix matches more than one record.
var ErrAmbiguous = errors.New("ambiguous id prefix")

// resolve accepts a full id or a unique prefix of one, as printed by ls.
// Records that failed to load resolve too, so their backups stay
// reachable.
func resolve(ctx context.Context, svc service.Service, arg string) (string, error) {
	if _, err := svc.Get(ctx, arg); err == nil {
		return arg, nil
	} else if !errors.Is(err, collection.ErrNotFound) {
		return "", err
	}

	rs, err := svc.List(ctx, query.Spec{Filter: func(r record.Record) bool {
		return strings.HasPrefix(r.ID, arg)
	}})
	if err != nil {
		return "", err
	}
	var ids []string
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	for _, f := range svc.Failed() {
		if f.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(f.ID, arg) {
			ids = append(ids, f.ID)
		}
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", collection.ErrNotFound, arg)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d records", ErrAmbiguous, arg, len(ids))
	}
}

// parseIngredient reads "name:quantity:unit". Quantity and unit are
// optional: "salt:20:g", "cabbage:1", "water".
func parseIngredient(s string) (record.Ingredient, error) {
	parts := strings.SplitN(s, ":", 3)
	ing := record.Ingredient{Name: strings.TrimSpace(parts[0])}
	if ing.Name == "" {
		return ing, fmt.Errorf("ingredient %q: name is required", s)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		q, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return ing, fmt.Errorf("ingredient %q: quantity must be a number", s)
		}
		ing.Quantity = q
	}
	if len(parts) > 2 {
		ing.Unit = strings.TrimSpace(parts[2])
	}
	return ing, nil
}

func parseIngredients(values []string) ([]record.Ingredient, error) {
	out := make([]record.Ingredient, 0, len(values))
	for _, v := range values {
		ing, err := parseIngredient(v)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

// dateFlag returns the named date flag, or def when it is unset.
func dateFlag(c *cobra.Command, name string, def record.Date) (record.Date, error) {
	s, _ := c.Flags().GetString(name)
	if s == "" {
		return def, nil
	}
	d, err := record.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}
