// Package core provides the core extension for fermi.
// It registers commands: config, serve, guide, prune, log, version.
package core

import (
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/logging"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct {
	ctx extension.Context
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Storeless     = (*Extension)(nil)
	_ extension.EventHandler  = (*Extension)(nil)
)

// Name returns "core".
func (e *Extension) Name() string { return "core" }

// Init keeps the shared context for serve and prune.
func (e *Extension) Init(ctx extension.Context) error {
	e.ctx = ctx
	return nil
}

// Commands returns the core CLI commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newConfigCmd(),
		e.newServeCmd(),
		newGuideCmd(),
		e.newPruneCmd(),
		newLogCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil: the record tools live in internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoStoreCommands returns commands that work without loading records.
// config must be able to repair a bad storage root.
func (e *Extension) NoStoreCommands() []string {
	return []string{"config", "guide", "log", "version"}
}

// HandleEvent traces record changes at debug level.
func (e *Extension) HandleEvent(_ extension.Context, ev extension.Event) error {
	logging.Debug().Str("event", string(ev.Type)).Str("id", ev.ID).Msg("record event")
	return nil
}
