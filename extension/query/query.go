// Package query provides the read-only views over records: due, overdue,
// where, stats, and the ingredient, container and unit suggestion lists.
package query

import (
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the query extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "query".
func (e *Extension) Name() string { return "query" }

// Init connects to the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the view commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newDueCmd(),
		e.newOverdueCmd(),
		e.newWhereCmd(),
		e.newStatsCmd(),
		e.newSuggestCmd("ingredients", service.SuggestIngredients, "List ingredient names used across records"),
		e.newSuggestCmd("containers", service.SuggestContainers, "List containers used across records"),
		e.newSuggestCmd("units", service.SuggestUnits, "List ingredient units beyond the built-in ones"),
	}
}

// MCPTools returns the stats tool.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{statsTool()}
}
