// ABOUTME: MCP resource handlers for exposing prospect data
// ABOUTME: Provides read-only access to people and the pipeline via leadbook:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/viz"
)

const resourceScheme = "leadbook://"

type ResourceHandlers struct {
	store people.Store
}

func NewResourceHandlers(store people.Store) *ResourceHandlers {
	return &ResourceHandlers{store: store}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "people":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllPeople(ctx, uri)
		}
		return h.readPerson(ctx, uri, parts[1])
	case "pipeline":
		return h.readPipeline(ctx, uri)
	}
	return nil, mcp.ResourceNotFoundError(uri)
}

func (h *ResourceHandlers) readAllPeople(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	all, err := h.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}
	return jsonResource(uri, all)
}

func (h *ResourceHandlers) readPerson(ctx context.Context, uri, id string) (*mcp.ReadResourceResult, error) {
	person, err := h.store.Get(ctx, id)
	if errors.Is(err, people.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}
	return jsonResource(uri, person)
}

func (h *ResourceHandlers) readPipeline(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	all, err := h.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}
	return jsonResource(uri, viz.GenerateDashboardStats(all))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
