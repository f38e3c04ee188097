package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"time"
)

// hashLength is the number of hex characters kept from the sha256 digest.
const hashLength = 12

// Hash fingerprints a declaration by its source text and location.
func Hash(content, filePath string, line, column int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d-%d", content, filePath, line, column)))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// ID derives a pattern identity from its name and hash.
func ID(name, hash string) string {
	return name + "-" + hash
}

// NewStub creates an unenriched pattern with zero-value metadata.
func NewStub(name string, typ Type, filePath string, line, column int, content string, now time.Time) Pattern {
	hash := Hash(content, filePath, line, column)
	return Pattern{
		ID:           ID(name, hash),
		Name:         name,
		Type:         typ,
		FilePath:     filePath,
		LineNumber:   line,
		ColumnNumber: column,
		Hash:         hash,
		Metadata: Metadata{
			Parameters:   []Parameter{},
			Complexity:   1,
			UsageCount:   0,
			LastModified: now,
		},
		Dependencies: []string{},
		Exports:      []ExportInfo{},
	}
}

// Clone returns a deep copy so a stage can derive a new value without
// aliasing the previous one.
func (p Pattern) Clone() Pattern {
	out := p
	out.Metadata.Parameters = slices.Clone(p.Metadata.Parameters)
	out.Metadata.GenericTypes = slices.Clone(p.Metadata.GenericTypes)
	out.Metadata.PropTypes = maps.Clone(p.Metadata.PropTypes)
	if p.Metadata.ArchitecturalMetrics != nil {
		m := *p.Metadata.ArchitecturalMetrics
		out.Metadata.ArchitecturalMetrics = &m
	}
	out.Dependencies = slices.Clone(p.Dependencies)
	out.Exports = slices.Clone(p.Exports)
	return out
}

// IsExported reports whether the pattern has any export entry.
func (p Pattern) IsExported() bool {
	return len(p.Exports) > 0
}

// PrimaryExport returns the first export mechanism, or ExportNone.
func (p Pattern) PrimaryExport() ExportType {
	if len(p.Exports) == 0 {
		return ExportNone
	}
	return p.Exports[0].Type
}
