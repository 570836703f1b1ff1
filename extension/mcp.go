// mcp.go defines types for MCP tool registration by extensions.
//
// Not all extensions need MCP tools; the core record tools live in
// internal/mcp. The handler receives both the Go context and the extension
// Context for service access.

package extension

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPTool pairs an MCP tool definition with its handler.
type MCPTool struct {
	Tool    mcp.Tool
	Handler MCPHandler
}

// MCPHandler processes MCP tool requests.
type MCPHandler func(ctx context.Context, extCtx Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ServerTools binds every registered extension tool to extCtx for the MCP
// server.
func ServerTools(extCtx Context) []server.ServerTool {
	var out []server.ServerTool
	for _, ext := range All() {
		for _, t := range ext.MCPTools() {
			h := t.Handler
			out = append(out, server.ServerTool{
				Tool: t.Tool,
				Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					return h(ctx, extCtx, req)
				},
			})
		}
	}
	return out
}
