package mcp

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/project-patterns/internal/exports"
	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/quality"
)

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// summarize builds the analyze_patterns response for res.
func summarize(res *pattern.Result) AnalyzeResponse {
	resp := AnalyzeResponse{
		Stats:           res.Stats,
		Quality:         res.QualityReport.Quality,
		Assessment:      quality.Describe(res.QualityReport.Quality),
		ByType:          make(map[pattern.Type]int),
		ByPurpose:       make(map[pattern.Purpose]int),
		Distribution:    res.QualityReport.Distribution,
		ErrorCount:      len(res.Errors),
		Recommendations: res.QualityReport.Recommendations,
	}
	for _, p := range res.Patterns {
		resp.ByType[p.Type]++
		if p.Metadata.Purpose != "" {
			resp.ByPurpose[p.Metadata.Purpose]++
		}
	}
	// Errors are listed only while the list stays readable.
	if len(res.Errors) <= 20 {
		resp.Errors = res.Errors
	}
	return resp
}

// findPatterns applies req to patterns in inventory order.
func findPatterns(patterns []pattern.Pattern, req FindRequest) FindResponse {
	matched := patterns
	if req.ExportName != "" {
		matched = exports.FindByExportName(matched, req.ExportName)
	}
	if req.ImportPath != "" {
		matched = exports.FindByImportPath(matched, req.ImportPath)
	}

	matched = slices.DeleteFunc(slices.Clone(matched), func(p pattern.Pattern) bool {
		switch {
		case req.Name != "" && p.Name != req.Name:
			return true
		case req.Type != "" && string(p.Type) != req.Type:
			return true
		case req.Purpose != "" && string(p.Metadata.Purpose) != req.Purpose:
			return true
		case req.FilePath != "" && p.FilePath != req.FilePath:
			return true
		case req.ExportedOnly && !p.IsExported():
			return true
		}
		return false
	})
	if matched == nil {
		matched = []pattern.Pattern{}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}
	limit = min(limit, maxFindLimit)

	resp := FindResponse{Patterns: matched, Total: len(matched)}
	if len(matched) > limit {
		resp.Patterns = matched[:limit]
		resp.Truncated = true
	}
	return resp
}
