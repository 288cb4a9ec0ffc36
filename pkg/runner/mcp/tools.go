package mcp

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/wheel"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListMediaTool(srv, svc)
	registerSetFilterTool(srv, svc)
	registerListFacetsTool(srv, svc)
	registerGetMediaTool(srv, svc)
	registerToggleSelectionTool(srv, svc)
	registerSelectVisibleTool(srv, svc)
	registerClearSelectionTool(srv, svc)
	registerSpinWheelTool(srv, svc)
	registerSpinHistoryTool(srv, svc)
}

func registerListMediaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_media",
		mcp.WithDescription("List the visible titles under the current filter and sort."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of titles to return. Zero returns all."),
			mcp.Min(0),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 50)
		view, err := svc.ListMedia(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(view)
	})
}

func registerSetFilterTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_filter",
		mcp.WithDescription("Change the filter or sort. Omitted arguments keep their current value."),
		mcp.WithBoolean("reset",
			mcp.Description("Restore the default filter before applying the other arguments."),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive substring matched against every title variant."),
		),
		mcp.WithString("genres",
			mcp.Description("Comma separated genres; a title must carry all of them. Empty clears."),
		),
		mcp.WithString("formats",
			mcp.Description("Comma separated formats such as TV, MOVIE, OVA. Empty hides every format."),
		),
		mcp.WithString("custom_lists",
			mcp.Description("Comma separated custom list names; a title must be in at least one. Empty clears."),
		),
		mcp.WithNumber("score_from",
			mcp.Description("Lowest average score to keep, on a 0-10 scale."),
			mcp.Min(filter.MinScore),
			mcp.Max(filter.MaxScore),
		),
		mcp.WithNumber("score_to",
			mcp.Description("Highest average score to keep, on a 0-10 scale."),
			mcp.Min(filter.MinScore),
			mcp.Max(filter.MaxScore),
		),
		mcp.WithBoolean("show_unaired", mcp.Description("Include titles that have not started airing.")),
		mcp.WithBoolean("show_planning", mcp.Description("Include titles on the planning list.")),
		mcp.WithBoolean("show_dropped", mcp.Description("Include dropped titles.")),
		mcp.WithBoolean("show_paused", mcp.Description("Include paused titles.")),
		mcp.WithString("sort",
			mcp.Description("Sort field."),
			mcp.Enum(string(filter.SortDate), string(filter.SortTitle), string(filter.SortScore)),
		),
		mcp.WithString("order",
			mcp.Description("Sort direction."),
			mcp.Enum(string(filter.Ascending), string(filter.Descending)),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts, err := filterOptionsFromRequest(svc, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		view, err := svc.SetFilter(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		view.Media = nil
		return toJSONResult(view)
	})
}

func filterOptionsFromRequest(svc *Service, request mcp.CallToolRequest) (FilterOptions, error) {
	args := request.GetArguments()
	opts := FilterOptions{Reset: request.GetBool("reset", false)}

	if _, ok := args["search"]; ok {
		v := request.GetString("search", "")
		opts.Search = &v
	}
	if _, ok := args["genres"]; ok {
		opts.Genres = splitList(request.GetString("genres", ""))
	}
	if _, ok := args["custom_lists"]; ok {
		opts.CustomLists = splitList(request.GetString("custom_lists", ""))
	}
	if _, ok := args["formats"]; ok {
		formats, err := ParseFormats(request.GetString("formats", ""))
		if err != nil {
			return opts, err
		}
		opts.Formats = formats
	}
	if _, ok := args["score_from"]; ok {
		v := request.GetFloat("score_from", filter.MinScore)
		opts.ScoreFrom = &v
	}
	if _, ok := args["score_to"]; ok {
		v := request.GetFloat("score_to", filter.MaxScore)
		opts.ScoreTo = &v
	}
	flags := map[string]**bool{
		"show_unaired":  &opts.ShowUnaired,
		"show_planning": &opts.ShowPlanning,
		"show_dropped":  &opts.ShowDropped,
		"show_paused":   &opts.ShowPaused,
	}
	for name, dst := range flags {
		if _, ok := args[name]; ok {
			v := request.GetBool(name, false)
			*dst = &v
		}
	}

	_, hasSort := args["sort"]
	_, hasOrder := args["order"]
	if hasSort || hasOrder {
		current := svc.App.View().Params.Sort
		if hasSort {
			field, err := filter.ParseSortField(request.GetString("sort", ""))
			if err != nil {
				return opts, err
			}
			current.Field = field
		}
		if hasOrder {
			order, err := filter.ParseSortOrder(request.GetString("order", ""))
			if err != nil {
				return opts, err
			}
			current.Order = order
		}
		opts.Sort = &current
	}
	return opts, nil
}

func registerListFacetsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_facets",
		mcp.WithDescription("List the genres, formats and custom lists present in the library."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		facets, err := svc.Facets(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(facets)
	})
}

func registerGetMediaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_media",
		mcp.WithDescription("Fetch a single title by id."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Media identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.MediaByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerToggleSelectionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"toggle_selection",
		mcp.WithDescription("Add or remove titles from the wheel selection."),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma separated media identifiers to toggle."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("ids")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ids, err := ParseIDs(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		selected, err := svc.ToggleSelection(ctx, ids)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return selectionResult(selected)
	})
}

func registerSelectVisibleTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"select_visible",
		mcp.WithDescription("Select every title that passes the current filter."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selected, err := svc.SelectVisible(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return selectionResult(selected)
	})
}

func registerClearSelectionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"clear_selection",
		mcp.WithDescription("Remove every title from the wheel selection."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := svc.ClearSelection(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return selectionResult(nil)
	})
}

func registerSpinWheelTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"spin_wheel",
		mcp.WithDescription("Spin the wheel over the selected visible titles and return the winner."),
		mcp.WithString("ids",
			mcp.Description("Optional comma separated media identifiers that replace the selection before spinning."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := ParseIDs(request.GetString("ids", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.Spin(ctx, ids)
		if errors.Is(err, wheel.ErrNoCandidates) {
			return mcp.NewToolResultError("nothing to spin: select at least one visible title"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"id":         res.ID,
			"winner":     svc.toDTO(&res.Winner),
			"candidates": res.Candidates,
			"rotation":   res.Rotation,
			"at":         res.At,
		})
	})
}

func registerSpinHistoryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"spin_history",
		mcp.WithDescription("List previous spin results, newest first."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		history := svc.History(ctx)
		return toJSONResult(map[string]any{
			"count":   len(history),
			"results": history,
		})
	})
}

func selectionResult(ids []int) (*mcp.CallToolResult, error) {
	if ids == nil {
		ids = []int{}
	}
	return toJSONResult(map[string]any{
		"selected": ids,
		"count":    len(ids),
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
