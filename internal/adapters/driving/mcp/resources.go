package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Source kinds with their labels, icons and ranking priorities",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	if s.ports.Index == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Current index statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

// handleSourcesResource lists every source kind in canonical order.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type sourceInfo struct {
		Kind     string `json:"kind"`
		Label    string `json:"label"`
		Icon     string `json:"icon"`
		Priority int    `json:"priority"`
	}

	kinds := domain.AllSourceKinds()
	infos := make([]sourceInfo, len(kinds))
	for i, k := range kinds {
		infos[i] = sourceInfo{
			Kind:     k.String(),
			Label:    k.Label(),
			Icon:     k.Icon(),
			Priority: k.Priority(),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleStatsResource returns the current index statistics.
func (s *Server) handleStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, toStatsOutput(s.ports.Index.Stats()))
}

// jsonResource marshals v as the single content of a resource.
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
