package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-patterns/internal/exports"
	mcputils "github.com/mvp-joe/project-patterns/internal/mcp-utils"
	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// ResultSource provides the pattern inventory served by the tools.
type ResultSource interface {
	// Latest returns the most recent inventory, or nil if none exists yet.
	Latest() *pattern.Result
	// Refresh re-analyzes the project and returns the new inventory.
	Refresh(ctx context.Context) (*pattern.Result, error)
}

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddPatternTools registers analyze_patterns, find_patterns and
// module_dependents with an MCP server.
func AddPatternTools(s *server.MCPServer, source ResultSource) {
	s.AddTool(mcp.NewTool(
		"analyze_patterns",
		mcp.WithDescription("Summarize the pattern inventory of the project: counts per type and purpose, parse errors, and extraction quality scores."),
		mcp.WithBoolean("refresh",
			mcp.Description("Re-analyze the project before summarizing (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createAnalyzeHandler(source))

	s.AddTool(mcp.NewTool(
		"find_patterns",
		mcp.WithDescription("Find components, hooks, utility functions, interfaces and type definitions in the inventory. All filters are optional and combined with AND."),
		mcp.WithString("name", mcp.Description("Exact declaration name (e.g., 'useCounter')")),
		mcp.WithString("type",
			mcp.Description("Pattern type"),
			mcp.Enum(
				string(pattern.TypeComponent), string(pattern.TypeCustomHook), string(pattern.TypeUtilityFunction),
				string(pattern.TypeInterface), string(pattern.TypeDefinition), string(pattern.TypeEnum), string(pattern.TypeConstant),
			)),
		mcp.WithString("purpose",
			mcp.Description("Architectural purpose"),
			mcp.Enum(string(pattern.PurposeUI), string(pattern.PurposeLogic), string(pattern.PurposeData), string(pattern.PurposeUtility))),
		mcp.WithString("file_path", mcp.Description("Project-relative file path")),
		mcp.WithString("export_name", mcp.Description("Name the pattern is exported under ('default' for default exports)")),
		mcp.WithString("import_path", mcp.Description("Module specifier loaded within the declaration's own body through dynamic import() or require() (e.g., './Chart'). Top-level import statements of the file are not counted.")),
		mcp.WithBoolean("exported_only", mcp.Description("Only patterns with at least one export")),
		mcp.WithNumber("limit", mcp.Description("Maximum results to return (1-500, default: 50)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createFindHandler(source))

	s.AddTool(mcp.NewTool(
		"module_dependents",
		mcp.WithDescription("List the patterns that load a module within their own body through dynamic import() or require(). Top-level import statements of the file are not counted."),
		mcp.WithString("module",
			mcp.Required(),
			mcp.Description("Module specifier (e.g., './Chart' or 'lodash')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createDependentsHandler(source))
}

// inventory returns the latest result, analyzing once if there is none.
func inventory(ctx context.Context, source ResultSource, refresh bool) (*pattern.Result, error) {
	if !refresh {
		if res := source.Latest(); res != nil {
			return res, nil
		}
	}
	return source.Refresh(ctx)
}

func createAnalyzeHandler(source ResultSource) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req AnalyzeRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		res, err := inventory(ctx, source, req.Refresh)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return marshalToolResponse(summarize(res))
	}
}

func createFindHandler(source ResultSource) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req FindRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Limit < 0 {
			return mcp.NewToolResultError("limit must be positive"), nil
		}

		res, err := inventory(ctx, source, false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return marshalToolResponse(findPatterns(res.Patterns, req))
	}
}

func createDependentsHandler(source ResultSource) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req DependentsRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Module == "" {
			return mcp.NewToolResultError("module parameter is required"), nil
		}

		res, err := inventory(ctx, source, false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		reverse, err := exports.BuildReverseDependencyMap(res.Patterns)
		if err != nil {
			return nil, err
		}
		ids := reverse[req.Module]
		if ids == nil {
			ids = []string{}
		}
		return marshalToolResponse(DependentsResponse{Module: req.Module, PatternIDs: ids, Count: len(ids)})
	}
}
