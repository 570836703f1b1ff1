// Package extension provides the plugin architecture for fermi. Extensions
// encapsulate related functionality (commands, MCP tools) and register at
// init time, enabling modular feature development without touching core code.
package extension

import (
	"github.com/spf13/cobra"
)

// Extension defines the contract for fermi extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions receive the Context once the service is up.
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Storeless is an optional interface for extensions with commands that
// don't need the record service. Commands returned by NoStoreCommands()
// do not trigger loading in PersistentPreRunE.
//
// Use cases:
// 1. Configuration and help commands that must work with a broken root
// 2. Commands that manage their own service lifecycle
type Storeless interface {
	NoStoreCommands() []string
}
