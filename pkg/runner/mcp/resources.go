package mcp

import (
	"context"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerLibraryResource(srv, svc)
	registerHistoryResource(srv, svc)
	registerMediaTemplate(srv, svc)
}

func registerLibraryResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"anispin://library",
		"Library",
		mcp.WithResourceDescription("Summary of the loaded anime list with the current filter."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		report, err := svc.Report(ctx)
		if err != nil {
			return nil, err
		}
		view, err := svc.ListMedia(ctx, 0)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"report": report,
			"params": view.Params,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerHistoryResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"anispin://history",
		"Spin History",
		mcp.WithResourceDescription("Previous wheel results, newest first."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		history := svc.History(ctx)
		payload := map[string]any{
			"count":   len(history),
			"results": history,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerMediaTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"anispin://media/{id}",
		"Media Details",
		mcp.WithTemplateDescription("Detailed information about a single title."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := templateArg(request.Params.Arguments, "id")
		if raw == "" {
			return nil, fmt.Errorf("media id is required")
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid media id %q", raw)
		}

		dto, err := svc.MediaByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"media": dto})
	})
}

// templateArg reads a URI template variable, which the server may hand over
// as a string or a single element list.
func templateArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
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
