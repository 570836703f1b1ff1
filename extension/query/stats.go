// stats.go implements "fermi stats" and the fermi_stats MCP tool: counts
// per state, what needs attention today, and the average overall rating.

package query

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jpl-au/fermi/cmd"
	"github.com/jpl-au/fermi/extension"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/query"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// Stats summarises the collection.
type Stats struct {
	Total       int                  `json:"total"`
	ByState     map[record.State]int `json:"by_state"`
	Due         int                  `json:"due"`
	Overdue     int                  `json:"overdue"`
	Rated       int                  `json:"rated"`
	AverageStar float64              `json:"average_stars"`
	Invalid     int                  `json:"invalid"`
}

// compute builds Stats from the in-memory records.
func compute(ctx context.Context, svc service.Service, today record.Date) (Stats, error) {
	st := Stats{ByState: make(map[record.State]int)}
	for _, s := range record.States() {
		st.ByState[s] = 0
	}

	all, err := svc.List(ctx, query.Spec{Today: today})
	if err != nil {
		return st, err
	}
	st.Total = len(all)

	var sum int
	for _, r := range all {
		st.ByState[r.State()]++
		switch {
		case r.Active() && r.EndDate == today:
			st.Due++
		case r.Active() && r.EndDate.Before(today):
			st.Overdue++
		}
		if c, ok := r.Details.(record.Completed); ok && c.Ratings.Overall.Stars != nil {
			st.Rated++
			sum += *c.Ratings.Overall.Stars
		}
	}
	if st.Rated > 0 {
		st.AverageStar = float64(sum) / float64(st.Rated)
	}
	st.Invalid = len(svc.Failed())
	return st, nil
}

func (e *Extension) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise records",
		Args:  cobra.NoArgs,
		RunE:  e.runStats,
	}
}

func (e *Extension) runStats(c *cobra.Command, _ []string) error {
	today := cmd.TodayDate()
	if today == "" {
		today = record.Today()
	}

	st, err := compute(c.Context(), e.svc, today)
	log.Event("query:stats", "list").Actor(cmd.Actor()).Detail("count", st.Total).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("stats: %w", err))
	}
	if cmd.JSON() {
		return cmd.PrintJSON(st)
	}

	w := cmd.Out()
	fmt.Fprintf(w, "Records:      %d\n", st.Total)
	for _, s := range record.States() {
		fmt.Fprintf(w, "  %-11s %d\n", s, st.ByState[s])
	}
	fmt.Fprintf(w, "Due today:    %d\n", st.Due)
	fmt.Fprintf(w, "Overdue:      %d\n", st.Overdue)
	if st.Rated > 0 {
		fmt.Fprintf(w, "Avg overall:  %.1f (%d rated)\n", st.AverageStar, st.Rated)
	}
	if st.Invalid > 0 {
		fmt.Fprintf(w, "Invalid:      %d (run 'fermi prune')\n", st.Invalid)
	}
	return nil
}

func statsTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("fermi_stats",
			mcp.WithDescription("Counts per state, due and overdue batches, average overall rating"),
			mcp.WithString("today", mcp.Description("Reference date YYYY-MM-DD (default: local date)")),
		),
		Handler: handleStats,
	}
}

func handleStats(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	today := record.Today()
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		if s, ok := args["today"].(string); ok && s != "" {
			d, err := record.ParseDate(s)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			today = d
		}
	}

	st, err := compute(ctx, extCtx.Service(), today)
	log.Event("mcp:fermi_stats", "list").Actor("mcp").Detail("count", st.Total).Write(err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
