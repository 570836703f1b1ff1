// tools_records.go implements the record tools. They mirror the CLI
// commands but return structured JSON. Errors are returned as tool error
// results rather than Go errors so the LLM gets feedback it can act on.

package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/jpl-au/fermi/internal/history"
	"github.com/jpl-au/fermi/internal/log"
	"github.com/jpl-au/fermi/internal/ls"
	"github.com/jpl-au/fermi/internal/record"
	"github.com/jpl-au/fermi/internal/revert"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// listRecords handles fermi_list. It goes through internal/ls so sorting
// and filtering match the CLI exactly.
func (h *handlers) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := ls.Options{
		State:     record.State(getString(req, "state", "")),
		Container: getString(req, "container", ""),
		Search:    getString(req, "search", ""),
		Where:     getString(req, "where", ""),
		Sort:      getString(req, "sort", ""),
		Reverse:   getBool(req, "reverse", false),
		Limit:     getInt(req, "limit", 0),
	}

	var err error
	l := log.Event("mcp:list", "list").Actor(Actor).Detail("where", opts.Where)
	defer func() { l.Write(err) }()

	res, err := ls.Run(ctx, io.Discard, h.svc, opts)
	if err != nil {
		return errorResult(err)
	}
	l.Detail("count", len(res.Records))
	return jsonResult(res.Records)
}

func (h *handlers) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return errorResult(err)
	}
	r, err := h.svc.Get(ctx, id)
	log.Event("mcp:get", "read").Actor(Actor).Record(id).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(r)
}

func (h *handlers) dueRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.dated(ctx, req, "due", h.svc.Due)
}

func (h *handlers) overdueRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.dated(ctx, req, "overdue", h.svc.Overdue)
}

func (h *handlers) dated(ctx context.Context, req mcp.CallToolRequest, name string,
	fn func(context.Context, record.Date) ([]record.Record, error),
) (*mcp.CallToolResult, error) {
	var today record.Date
	if s := getString(req, "today", ""); s != "" {
		d, err := record.ParseDate(s)
		if err != nil {
			return errorResult(err)
		}
		today = d
	}
	rs, err := fn(ctx, today)
	log.Event("mcp:"+name, "list").Actor(Actor).Detail("count", len(rs)).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(rs)
}

func (h *handlers) addRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r := record.Record{
		Name:      getString(req, "name", ""),
		Container: getString(req, "container", ""),
		StartDate: record.Date(getString(req, "start_date", "")),
		EndDate:   record.Date(getString(req, "end_date", "")),
		Notes:     getString(req, "notes", ""),
	}
	if err := decodeArg(req, "ingredients", &r.Ingredients); err != nil {
		return errorResult(fmt.Errorf("ingredients: %w", err))
	}

	added, err := h.svc.Add(ctx, r)
	log.Event("mcp:add", "insert").Actor(Actor).Record(added.ID).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(added)
}

func (h *handlers) completeRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return errorResult(err)
	}
	ratings := record.Ratings{
		Overall:    record.Rating{Stars: getStars(req, "overall"), Notes: getString(req, "notes", "")},
		Taste:      record.Rating{Stars: getStars(req, "taste")},
		Aroma:      record.Rating{Stars: getStars(req, "aroma")},
		Texture:    record.Rating{Stars: getStars(req, "texture")},
		Appearance: record.Rating{Stars: getStars(req, "appearance")},
	}

	r, err := h.svc.Complete(ctx, id, record.Date(getString(req, "date", "")), ratings)
	log.Event("mcp:complete", "update").Actor(Actor).Record(id).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(r)
}

func (h *handlers) failRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return errorResult(err)
	}
	reason, err := req.RequireString("reason")
	if err != nil {
		return errorResult(err)
	}

	r, err := h.svc.Fail(ctx, id, reason, record.Date(getString(req, "date", "")))
	log.Event("mcp:fail", "update").Actor(Actor).Record(id).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(r)
}

func (h *handlers) deleteRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return errorResult(err)
	}
	prev, err := h.svc.Delete(ctx, id)
	log.Event("mcp:delete", "delete").Actor(Actor).Record(id).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"deleted": id, "record": prev})
}

func (h *handlers) pruneRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	failed := h.svc.Failed()
	ids := make([]string, len(failed))
	reasons := make(map[string]string, len(failed))
	for i, f := range failed {
		ids[i] = f.ID
		reasons[f.ID] = f.Err.Error()
	}
	if getBool(req, "dry_run", false) {
		return jsonResult(map[string]any{"would_delete": ids, "reasons": reasons})
	}

	n, err := h.svc.Prune(ctx)
	log.Event("mcp:prune", "delete").Actor(Actor).Detail("count", n).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"deleted": n, "ids": ids})
}

func (h *handlers) historyRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return errorResult(err)
	}
	res, err := history.Run(ctx, io.Discard, h.svc, id, history.Options{ShowDiff: getBool(req, "diff", false)})
	log.Event("mcp:history", "read").Actor(Actor).Record(id).Detail("count", len(res.Backups)).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

func (h *handlers) restoreRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return errorResult(err)
	}
	slot := getInt(req, "slot", 0)

	res, err := revert.Run(ctx, io.Discard, h.svc, id, slot)
	log.Event("mcp:restore", "update").Actor(Actor).Record(id).Slot(slot).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(res)
}

func (h *handlers) suggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := req.RequireString("list")
	if err != nil {
		return errorResult(err)
	}
	values, err := h.svc.Suggest(ctx, service.Suggestion(list), nil)
	log.Event("mcp:suggest", "list").Actor(Actor).Detail("list", list).Write(err)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(values)
}
