package exports

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/project-patterns/internal/pattern"
)

// Vertex kinds stored as the "kind" vertex attribute.
const (
	KindPattern = "pattern"
	KindModule  = "module"
)

// modulePrefix keeps module vertices apart from pattern IDs.
const modulePrefix = "module:"

// DependencyGraph links pattern IDs to the module specifiers their subtrees
// import. Forward and reverse indexes keep pattern and dependency order.
type DependencyGraph struct {
	graph      graph.Graph[string, string]
	forward    map[string][]string
	dependents map[string][]string
	modules    []string
}

// NewDependencyGraph builds the graph for a pattern set.
func NewDependencyGraph(patterns []pattern.Pattern) (*DependencyGraph, error) {
	dg := &DependencyGraph{
		graph:      graph.New(graph.StringHash, graph.Directed()),
		forward:    make(map[string][]string),
		dependents: make(map[string][]string),
	}

	for _, p := range patterns {
		if err := dg.addVertex(p.ID, KindPattern); err != nil {
			return nil, err
		}
		for _, dep := range p.Dependencies {
			moduleID := modulePrefix + dep
			if err := dg.addVertex(moduleID, KindModule); err != nil {
				return nil, err
			}
			if _, ok := dg.dependents[dep]; !ok {
				dg.modules = append(dg.modules, dep)
			}

			err := dg.graph.AddEdge(p.ID, moduleID)
			if errors.Is(err, graph.ErrEdgeAlreadyExists) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to link %s to %s: %w", p.ID, dep, err)
			}
			dg.forward[p.ID] = append(dg.forward[p.ID], dep)
			dg.dependents[dep] = append(dg.dependents[dep], p.ID)
		}
	}

	return dg, nil
}

func (dg *DependencyGraph) addVertex(id, kind string) error {
	err := dg.graph.AddVertex(id, graph.VertexAttribute("kind", kind))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add %s vertex %s: %w", kind, id, err)
	}
	return nil
}

// Forward maps each pattern ID with at least one dependency to its
// dependencies.
func (dg *DependencyGraph) Forward() map[string][]string {
	out := make(map[string][]string, len(dg.forward))
	for id, deps := range dg.forward {
		out[id] = append([]string(nil), deps...)
	}
	return out
}

// Reverse maps each module specifier to the IDs of patterns depending on it.
func (dg *DependencyGraph) Reverse() map[string][]string {
	out := make(map[string][]string, len(dg.dependents))
	for module, ids := range dg.dependents {
		out[module] = append([]string(nil), ids...)
	}
	return out
}

// Modules lists module specifiers in first-seen order.
func (dg *DependencyGraph) Modules() []string {
	return append([]string(nil), dg.modules...)
}

// Dependents returns the number of patterns importing module, read from the
// graph's predecessor map.
func (dg *DependencyGraph) Dependents(module string) (int, error) {
	preds, err := dg.graph.PredecessorMap()
	if err != nil {
		return 0, fmt.Errorf("failed to read predecessors: %w", err)
	}
	return len(preds[modulePrefix+module]), nil
}

// Size returns the vertex and edge counts.
func (dg *DependencyGraph) Size() (vertices, edges int, err error) {
	if vertices, err = dg.graph.Order(); err != nil {
		return 0, 0, err
	}
	if edges, err = dg.graph.Size(); err != nil {
		return 0, 0, err
	}
	return vertices, edges, nil
}

// BuildDependencyGraph returns the forward dependency map of patterns.
func BuildDependencyGraph(patterns []pattern.Pattern) (map[string][]string, error) {
	dg, err := NewDependencyGraph(patterns)
	if err != nil {
		return nil, err
	}
	return dg.Forward(), nil
}

// BuildReverseDependencyMap returns module specifier to dependent pattern IDs.
func BuildReverseDependencyMap(patterns []pattern.Pattern) (map[string][]string, error) {
	dg, err := NewDependencyGraph(patterns)
	if err != nil {
		return nil, err
	}
	return dg.Reverse(), nil
}
