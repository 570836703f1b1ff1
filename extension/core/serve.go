// serve.go implements the "fermi serve" command for MCP server operation.
//
// Unlike other commands that run and exit, serve blocks handling MCP
// requests over stdio until the client disconnects. It shares the
// service created by the root command so Execute closes it afterwards.

package core

import (
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/mcp"
	"github.com/spf13/cobra"
)

func (e *Extension) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

Use --root to serve a specific storage root:
  fermi serve --root /srv/ferments`,
		Args: cobra.NoArgs,
		RunE: e.runServe,
	}
}

func (e *Extension) runServe(_ *cobra.Command, _ []string) error {
	return mcp.Serve(e.ctx.Service(), extension.ServerTools(e.ctx)...)
}
