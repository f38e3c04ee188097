package mcp

import (
	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// AnalyzeRequest is the argument set of the analyze_patterns tool.
type AnalyzeRequest struct {
	// Refresh forces a new run instead of returning the cached inventory.
	Refresh bool `json:"refresh"`
}

// AnalyzeResponse summarizes one inventory.
type AnalyzeResponse struct {
	Stats           pattern.ParseStats      `json:"stats"`
	Quality         pattern.QualityMetrics  `json:"quality"`
	Assessment      string                  `json:"assessment"`
	ByType          map[pattern.Type]int    `json:"byType"`
	ByPurpose       map[pattern.Purpose]int `json:"byPurpose"`
	Distribution    pattern.Distribution    `json:"distribution"`
	ErrorCount      int                     `json:"errorCount"`
	Errors          []pattern.ParseError    `json:"errors,omitempty"`
	Recommendations []string                `json:"recommendations"`
}

// FindRequest is the argument set of the find_patterns tool.
type FindRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Purpose      string `json:"purpose"`
	FilePath     string `json:"file_path"`
	ExportName   string `json:"export_name"`
	ImportPath   string `json:"import_path"`
	ExportedOnly bool   `json:"exported_only"`
	Limit        int    `json:"limit"`
}

// FindResponse lists matching patterns.
type FindResponse struct {
	Patterns []pattern.Pattern `json:"patterns"`
	Total    int               `json:"total"`
	// Truncated is set when Limit cut the result.
	Truncated bool `json:"truncated"`
}

// DependentsRequest is the argument set of the module_dependents tool.
type DependentsRequest struct {
	Module string `json:"module"`
}

// DependentsResponse lists the patterns importing a module.
type DependentsResponse struct {
	Module     string   `json:"module"`
	PatternIDs []string `json:"patternIds"`
	Count      int      `json:"count"`
}

const (
	defaultFindLimit = 50
	maxFindLimit     = 500
)
