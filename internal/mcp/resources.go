// resources.go serves records as MCP resources so clients can load a
// record into context without a tool call.
//
// URIs are fermi://records/{id} for the current data.json and
// fermi://records/{id}/backup/{slot} for a retained backup.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

var (
	// ErrInvalidURI indicates a malformed resource URI.
	ErrInvalidURI = errors.New("invalid URI")
	// ErrEmptyID indicates a resource URI without a record id.
	ErrEmptyID = errors.New("empty record id")
)

const recordURIPrefix = "fermi://records/"

func (h *handlers) readRecordResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id, slot, err := parseRecordURI(uri)
	if err != nil {
		return nil, err
	}

	var data []byte
	if slot > 0 {
		data, err = h.svc.ReadBackup(ctx, id, slot)
	} else {
		data, err = h.svc.Current(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// parseRecordURI extracts the id and optional backup slot.
func parseRecordURI(uri string) (id string, slot int, err error) {
	if !strings.HasPrefix(uri, recordURIPrefix) {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	rest := strings.TrimPrefix(uri, recordURIPrefix)
	if rest == "" {
		return "", 0, ErrEmptyID
	}

	id, s, found := strings.Cut(rest, "/backup/")
	if !found {
		if strings.Contains(rest, "/") {
			return "", 0, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
		}
		return rest, 0, nil
	}
	if id == "" {
		return "", 0, ErrEmptyID
	}
	slot, err = strconv.Atoi(s)
	if err != nil || slot < 1 {
		return "", 0, fmt.Errorf("%w: invalid backup slot %q", ErrInvalidURI, s)
	}
	return id, slot, nil
}
