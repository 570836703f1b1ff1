// Package mcp implements the Model Context Protocol server, exposing fermi
// operations to LLMs. Assistants can list, inspect and update fermentation
// records through a standardised protocol.
package mcp

import (
	"context"
	"errors"

	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// Actor is recorded in the audit log for tool calls.
const Actor = "mcp"

// handlers provides MCP request handlers with access to the record service.
type handlers struct {
	svc service.Service
}

// NewServer builds the MCP server for svc. extra tools (contributed by
// extensions) are registered after the built-in ones.
func NewServer(svc service.Service, extra ...server.ServerTool) *server.MCPServer {
	h := &handlers{svc: svc}

	s := server.NewMCPServer(
		"fermi",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	if len(extra) > 0 {
		s.AddTools(extra...)
	}
	return s
}

// Serve runs the MCP server over stdio until the client disconnects.
// stdout is reserved for JSON-RPC; diagnostics go to stderr.
func Serve(svc service.Service, extra ...server.ServerTool) error {
	s := NewServer(svc, extra...)

	logging.Info().Str("version", Version).Str("transport", "stdio").Msg("fermi MCP server ready")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		logging.Info().Msg("server stopped")
		return nil
	}
	return err
}

// registerResources adds URI-based read access to records and backups.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"fermi://records/{id}",
			"Record",
			mcp.WithTemplateDescription("Current data.json of a record"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		h.readRecordResource,
	)
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"fermi://records/{id}/backup/{slot}",
			"Record Backup",
			mcp.WithTemplateDescription("A retained backup of a record (1 = newest)"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		h.readRecordResource,
	)
}

// registerTools exposes fermi operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("fermi_list",
			mcp.WithDescription("List fermentation records with optional filters"),
			mcp.WithString("state", mcp.Description("provisional, completed or failed")),
			mcp.WithString("container", mcp.Description("Only records in this container")),
			mcp.WithString("search", mcp.Description("Free text matched against name, container, notes and ingredients")),
			mcp.WithString("where", mcp.Description(`Expression filter, e.g. 'active && endDate <= today' or '"salt" in ingredients'`)),
			mcp.WithString("sort", mcp.Description("name, state, startDate, endDate (default), createdAt, updatedAt")),
			mcp.WithBoolean("reverse", mcp.Description("Reverse the sort order")),
			mcp.WithNumber("limit", mcp.Description("Maximum records to return")),
		),
		h.listRecords,
	)

	s.AddTool(
		mcp.NewTool("fermi_get",
			mcp.WithDescription("Get one record by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		),
		h.getRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_due",
			mcp.WithDescription("Active records whose end date is today"),
			mcp.WithString("today", mcp.Description("Reference date YYYY-MM-DD (default: local date)")),
		),
		h.dueRecords,
	)

	s.AddTool(
		mcp.NewTool("fermi_overdue",
			mcp.WithDescription("Active records whose end date has passed"),
			mcp.WithString("today", mcp.Description("Reference date YYYY-MM-DD (default: local date)")),
		),
		h.overdueRecords,
	)

	s.AddTool(
		mcp.NewTool("fermi_add",
			mcp.WithDescription("Start a new fermentation record"),
			mcp.WithString("name", mcp.Required(), mcp.Description("What is being fermented")),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Required(), mcp.Description("Planned end, YYYY-MM-DD")),
			mcp.WithString("container", mcp.Description("Jar, crock, bottle...")),
			mcp.WithString("notes", mcp.Description("Free-form notes")),
			mcp.WithArray("ingredients", mcp.Description(`Ingredients, e.g. [{"name":"cabbage","quantity":1,"unit":"kg"}]`)),
		),
		h.addRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_complete",
			mcp.WithDescription("Mark an active record completed with tasting ratings"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
			mcp.WithString("date", mcp.Description("Completion date YYYY-MM-DD (default: today)")),
			mcp.WithNumber("overall", mcp.Description("Overall stars 1-5")),
			mcp.WithNumber("taste", mcp.Description("Taste stars 1-5")),
			mcp.WithNumber("aroma", mcp.Description("Aroma stars 1-5")),
			mcp.WithNumber("texture", mcp.Description("Texture stars 1-5")),
			mcp.WithNumber("appearance", mcp.Description("Appearance stars 1-5")),
			mcp.WithString("notes", mcp.Description("Overall tasting notes")),
		),
		h.completeRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_fail",
			mcp.WithDescription("Mark an active record failed"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
			mcp.WithString("reason", mcp.Required(), mcp.Description("What went wrong")),
			mcp.WithString("date", mcp.Description("Failure date YYYY-MM-DD (default: today)")),
		),
		h.failRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_delete",
			mcp.WithDescription("Delete a record and its backups. Returns the deleted record so it can be re-added."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		),
		h.deleteRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_prune",
			mcp.WithDescription("Delete every record that failed to load (corrupt or invalid data.json)"),
			mcp.WithBoolean("dry_run", mcp.Description("Only list the records that would be deleted")),
		),
		h.pruneRecords,
	)

	s.AddTool(
		mcp.NewTool("fermi_history",
			mcp.WithDescription("List a record's backups, optionally with the diff of each write"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
			mcp.WithBoolean("diff", mcp.Description("Include diffs")),
		),
		h.historyRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_restore",
			mcp.WithDescription("Replace a record with one of its backups"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
			mcp.WithNumber("slot", mcp.Required(), mcp.Description("Backup slot, 1 = newest")),
		),
		h.restoreRecord,
	)

	s.AddTool(
		mcp.NewTool("fermi_suggest",
			mcp.WithDescription("Distinct ingredient names, containers or custom units in use"),
			mcp.WithString("list", mcp.Required(), mcp.Description("ingredients, containers or units")),
		),
		h.suggest,
	)

	s.AddTool(
		mcp.NewTool("fermi_config_get",
			mcp.WithDescription("Get a configuration value"),
			mcp.WithString("key", mcp.Description("storage.root or backups.max, empty for all")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("fermi_config_set",
			mcp.WithDescription("Set a configuration value. Changing storage.root reloads every record."),
			mcp.WithString("key", mcp.Required(), mcp.Description("storage.root or backups.max")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value to set")),
		),
		h.configSet,
	)

	s.AddTool(
		mcp.NewTool("fermi_guide",
			mcp.WithDescription("Get help/guide content for fermi"),
			mcp.WithString("topic", mcp.Description("Guide topic, or empty for the index")),
		),
		h.getGuide,
	)
}
