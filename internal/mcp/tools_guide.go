package mcp

import (
	"context"
	"fmt"

	"github.com/jpl-au/fermi/guide"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
)

// getGuide handles fermi_guide. An unknown topic returns the topic list.
func (h *handlers) getGuide(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := getString(req, "topic", "")

	content, err := guide.Get(topic)

	log.Event("mcp:guide", "read").Actor(Actor).Detail("topic", topic).Write(err)

	if err != nil {
		topics, listErr := guide.List()
		if listErr != nil {
			return nil, fmt.Errorf("listing guides: %w", listErr)
		}
		return jsonResult(map[string]any{
			"error":            err.Error(),
			"available_topics": topics,
		})
	}
	return mcp.NewToolResultText(content), nil
}
