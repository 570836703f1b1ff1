package mcp

import (
	"context"

	"github.com/jpl-au/fermi/internal/config"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) configGet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.svc.Config().Current()
	key := getString(req, "key", "")

	log.Event("mcp:config_get", "read").Actor(Actor).Detail("key", key).Write(nil)

	if key == "" {
		return jsonResult(cfg.All())
	}
	v, err := cfg.Get(key)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]string{key: v})
}

// configSet persists through the Provider, so a new storage root reloads
// the collection before the tool returns.
func (h *handlers) configSet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return errorResult(err)
	}
	value, err := req.RequireString("value")
	if err != nil {
		return errorResult(err)
	}

	err = h.svc.Config().Update(func(c *config.Config) error {
		return c.Set(key, value)
	})
	log.Event("mcp:config_set", "update").Actor(Actor).Detail("key", key).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]string{key: value})
}
