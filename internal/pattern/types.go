package pattern

import "time"

// Type is the kind of declaration a pattern represents.
type Type string

const (
	TypeComponent       Type = "component"
	TypeCustomHook      Type = "custom-hook"
	TypeUtilityFunction Type = "utility-function"
	TypeInterface       Type = "interface"
	TypeDefinition      Type = "type-definition"
	TypeEnum            Type = "enum"
	TypeConstant        Type = "constant"
)

// Purpose is the architectural role assigned by semantic analysis.
type Purpose string

const (
	PurposeUI      Purpose = "UI"
	PurposeLogic   Purpose = "Logic"
	PurposeData    Purpose = "Data"
	PurposeUtility Purpose = "Utility"
)

// ExportType describes how a declaration leaves its file.
type ExportType string

const (
	ExportNamed    ExportType = "named"
	ExportDefault  ExportType = "default"
	ExportReExport ExportType = "re-export"
	ExportNone     ExportType = "none"
)

// Severity grades a ParseError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Pattern is one recognized, classified source declaration.
type Pattern struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Type         Type         `json:"type" yaml:"type"`
	FilePath     string       `json:"filePath" yaml:"filePath"`
	LineNumber   int          `json:"lineNumber" yaml:"lineNumber"`
	ColumnNumber int          `json:"columnNumber" yaml:"columnNumber"`
	Hash         string       `json:"hash" yaml:"hash"`
	Metadata     Metadata     `json:"metadata" yaml:"metadata"`
	Dependencies []string     `json:"dependencies" yaml:"dependencies"`
	Exports      []ExportInfo `json:"exports" yaml:"exports"`
}

// Parameter is one resolved function parameter.
type Parameter struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
	Default  string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// Metrics are heuristic architectural proxies computed from a subtree.
type Metrics struct {
	Coupling        float64 `json:"coupling" yaml:"coupling"`
	Cohesion        float64 `json:"cohesion" yaml:"cohesion"`
	Abstraction     float64 `json:"abstraction" yaml:"abstraction"`
	Complexity      int     `json:"complexity" yaml:"complexity"`
	Maintainability float64 `json:"maintainability" yaml:"maintainability"`
}

// Metadata is filled in by the enrichment stages.
type Metadata struct {
	Parameters           []Parameter       `json:"parameters" yaml:"parameters"`
	ReturnType           string            `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	GenericTypes         []string          `json:"genericTypes,omitempty" yaml:"genericTypes,omitempty"`
	PropTypes            map[string]string `json:"propTypes,omitempty" yaml:"propTypes,omitempty"`
	Purpose              Purpose           `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	ArchitecturalMetrics *Metrics          `json:"architecturalMetrics,omitempty" yaml:"architecturalMetrics,omitempty"`
	Complexity           int               `json:"complexity" yaml:"complexity"`
	UsageCount           int               `json:"usageCount" yaml:"usageCount"`
	// LastModified is the analysis time, not source history.
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`
}

// ExportInfo records one way a declaration is exposed outside its file.
type ExportInfo struct {
	Type       ExportType `json:"type" yaml:"type"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Path       string     `json:"path,omitempty" yaml:"path,omitempty"`
	IsReExport bool       `json:"isReExport" yaml:"isReExport"`
}

// ParseError is a per-file problem reported alongside the patterns.
type ParseError struct {
	FilePath   string   `json:"filePath" yaml:"filePath"`
	LineNumber int      `json:"lineNumber" yaml:"lineNumber"`
	Message    string   `json:"message" yaml:"message"`
	Severity   Severity `json:"severity" yaml:"severity"`
}

// ParseStats summarizes one analysis run.
type ParseStats struct {
	TotalFiles     int `json:"totalFiles" yaml:"totalFiles"`
	ProcessedFiles int `json:"processedFiles" yaml:"processedFiles"`
	SkippedFiles   int `json:"skippedFiles" yaml:"skippedFiles"`
	TotalPatterns  int `json:"totalPatterns" yaml:"totalPatterns"`
	// ProcessingTime in milliseconds.
	ProcessingTime int64 `json:"processingTime" yaml:"processingTime"`
	// MemoryUsage in megabytes.
	MemoryUsage float64 `json:"memoryUsage" yaml:"memoryUsage"`
}

// QualityMetrics are the four quality axes plus their weighted blend, all 0-100.
type QualityMetrics struct {
	PatternDetectionRate    float64 `json:"patternDetectionRate" yaml:"patternDetectionRate"`
	TypeResolutionAccuracy  float64 `json:"typeResolutionAccuracy" yaml:"typeResolutionAccuracy"`
	SemanticAnalysisQuality float64 `json:"semanticAnalysisQuality" yaml:"semanticAnalysisQuality"`
	CrossFileConsistency    float64 `json:"crossFileConsistency" yaml:"crossFileConsistency"`
	OverallQuality          float64 `json:"overallQuality" yaml:"overallQuality"`
}

// PerformanceMetrics describe how the run performed.
type PerformanceMetrics struct {
	ProcessingTime    int64   `json:"processingTime" yaml:"processingTime"`
	MemoryUsage       float64 `json:"memoryUsage" yaml:"memoryUsage"`
	PatternsPerSecond float64 `json:"patternsPerSecond" yaml:"patternsPerSecond"`
	Efficiency        float64 `json:"efficiency" yaml:"efficiency"`
}

// Distribution counts patterns per individual-quality band.
type Distribution struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// QualityReport is the aggregate confidence of one run.
type QualityReport struct {
	Quality         QualityMetrics     `json:"quality" yaml:"quality"`
	Performance     PerformanceMetrics `json:"performance" yaml:"performance"`
	Recommendations []string           `json:"recommendations" yaml:"recommendations"`
	Distribution    Distribution       `json:"distribution" yaml:"distribution"`
	Timestamp       time.Time          `json:"timestamp" yaml:"timestamp"`
}

// Result is the complete output of an analysis run.
type Result struct {
	Patterns      []Pattern     `json:"patterns" yaml:"patterns"`
	Errors        []ParseError  `json:"errors" yaml:"errors"`
	Stats         ParseStats    `json:"stats" yaml:"stats"`
	QualityReport QualityReport `json:"qualityReport" yaml:"qualityReport"`
}

// IsFunctionLike reports whether the pattern type describes callable code.
func (t Type) IsFunctionLike() bool {
	return t == TypeComponent || t == TypeCustomHook || t == TypeUtilityFunction
}
