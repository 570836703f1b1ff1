// tools_util.go provides helpers for extracting typed parameters from MCP
// requests. Optional parameters fall back to a default rather than
// failing: an LLM omitting one should not see a type error.

package mcp

import (
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

func arguments(req mcp.CallToolRequest) map[string]any {
	args, _ := req.Params.Arguments.(map[string]any)
	return args
}

// getString returns a string parameter or def.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getBool returns a boolean parameter or def. A string "true" is not
// accepted.
func getBool(req mcp.CallToolRequest, name string, def bool) bool { //nolint:unparam
	if v, ok := arguments(req)[name].(bool); ok {
		return v
	}
	return def
}

// getInt returns a numeric parameter truncated to int, or def. JSON
// numbers arrive as float64.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	if v, ok := arguments(req)[name].(float64); ok {
		return int(v)
	}
	return def
}

// getStars returns a 1-5 rating parameter, or nil when absent.
func getStars(req mcp.CallToolRequest, name string) *int {
	v, ok := arguments(req)[name].(float64)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// decodeArg re-encodes a structured argument into out.
func decodeArg(req mcp.CallToolRequest, name string, out any) error {
	v, ok := arguments(req)[name]
	if !ok || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// jsonResult serialises v as indented JSON in a text result. Marshal
// failures become tool errors so every failure reaches the client the
// same way.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
