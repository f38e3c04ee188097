// Package semantic classifies a pattern's architectural purpose and computes
// complexity and architectural metrics from its syntax subtree.
package semantic

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-patterns/internal/pattern"
	"github.com/mvp-joe/project-patterns/internal/program"
	"github.com/mvp-joe/project-patterns/internal/syntax"
)

// Config holds the heuristic constants of the analysis.
type Config struct {
	// StateHooks are calls that mark a function as stateful logic.
	StateHooks []string `mapstructure:"state_hooks" yaml:"state_hooks"`
	// BuiltinPrefixes are callee name prefixes that do not add coupling.
	BuiltinPrefixes []string `mapstructure:"builtin_prefixes" yaml:"builtin_prefixes"`

	ImportWeight         float64 `mapstructure:"import_weight" yaml:"import_weight"`
	CallWeight           float64 `mapstructure:"call_weight" yaml:"call_weight"`
	PropertyAccessWeight float64 `mapstructure:"property_access_weight" yaml:"property_access_weight"`
	CouplingCap          float64 `mapstructure:"coupling_cap" yaml:"coupling_cap"`

	CohesionBase  float64 `mapstructure:"cohesion_base" yaml:"cohesion_base"`
	ReturnPenalty float64 `mapstructure:"return_penalty" yaml:"return_penalty"`
	BinaryPenalty float64 `mapstructure:"binary_penalty" yaml:"binary_penalty"`
	BranchPenalty float64 `mapstructure:"branch_penalty" yaml:"branch_penalty"`
	CohesionFloor float64 `mapstructure:"cohesion_floor" yaml:"cohesion_floor"`

	AbstractionBase     float64 `mapstructure:"abstraction_base" yaml:"abstraction_base"`
	GenericBonus        float64 `mapstructure:"generic_bonus" yaml:"generic_bonus"`
	HeritageBonus       float64 `mapstructure:"heritage_bonus" yaml:"heritage_bonus"`
	AbstractMethodBonus float64 `mapstructure:"abstract_method_bonus" yaml:"abstract_method_bonus"`
	AbstractionMin      float64 `mapstructure:"abstraction_min" yaml:"abstraction_min"`
	AbstractionMax      float64 `mapstructure:"abstraction_max" yaml:"abstraction_max"`
}

// DefaultConfig returns the standard heuristic constants.
func DefaultConfig() Config {
	return Config{
		StateHooks: []string{"useState", "useReducer", "useContext", "useRef"},
		BuiltinPrefixes: []string{
			"console", "Math", "JSON", "Array", "Object", "String", "Number",
			"Date", "RegExp", "Promise", "Set", "Map", "WeakMap", "WeakSet",
		},
		ImportWeight:         2,
		CallWeight:           1,
		PropertyAccessWeight: 0.5,
		CouplingCap:          10,
		CohesionBase:         10,
		ReturnPenalty:        0.5,
		BinaryPenalty:        0.2,
		BranchPenalty:        0.3,
		CohesionFloor:        1,
		AbstractionBase:      5,
		GenericBonus:         1,
		HeritageBonus:        1,
		AbstractMethodBonus:  2,
		AbstractionMin:       1,
		AbstractionMax:       10,
	}
}

var (
	dataNames = []string{"props", "state", "config", "api", "response", "request", "model", "entity", "dto"}
	uiNames   = []string{"component", "ui", "view"}
)

// Analyzer performs semantic classification. It is stateless after
// construction and safe for concurrent use.
type Analyzer struct {
	cfg        Config
	stateHooks map[string]bool
}

// New creates an Analyzer.
func New(cfg Config) *Analyzer {
	hooks := make(map[string]bool, len(cfg.StateHooks))
	for _, h := range cfg.StateHooks {
		hooks[h] = true
	}
	return &Analyzer{cfg: cfg, stateHooks: hooks}
}

// Analyze returns a copy of p with purpose, complexity, metrics, dependencies
// and usage count derived from its shape.
func (a *Analyzer) Analyze(p pattern.Pattern, shape syntax.Shape, f *program.SourceFile) pattern.Pattern {
	out := p.Clone()
	node := shape.Node()

	complexity := Complexity(node)
	coupling := Coupling(node, f.Source, a.cfg)

	out.Metadata.Complexity = complexity
	out.Metadata.Purpose = a.Purpose(p.Name, shape, f.Source)
	out.Metadata.ArchitecturalMetrics = &pattern.Metrics{
		Coupling:        coupling,
		Cohesion:        Cohesion(node, a.cfg),
		Abstraction:     Abstraction(node, a.cfg),
		Complexity:      complexity,
		Maintainability: Maintainability(complexity, coupling),
	}
	out.Dependencies = Dependencies(node, f.Source)
	out.Metadata.UsageCount = UsageCount(f.Root(), nameNode(shape), p.Name, f.Source)

	if _, ok := shape.(syntax.ClassDecl); ok && out.Metadata.Purpose == pattern.PurposeUI {
		out.Type = pattern.TypeComponent
	}

	return out
}

// Purpose classifies a declaration. Markup wins; data declarations are
// classified by name; callables by the evidence in their bodies.
func (a *Analyzer) Purpose(name string, shape syntax.Shape, source []byte) pattern.Purpose {
	node := shape.Node()
	if ContainsUI(node) {
		return pattern.PurposeUI
	}

	switch s := shape.(type) {
	case syntax.InterfaceDecl, syntax.TypeAliasDecl, syntax.EnumDecl, syntax.ConstantVar:
		return purposeByName(name)

	case syntax.FunctionDecl, syntax.FunctionVar, syntax.FunctionExpr, syntax.MethodDecl, syntax.WrapperCall:
		if _, ok := syntax.FunctionNode(s); !ok {
			return pattern.PurposeUtility
		}
		switch {
		case callsStateHook(node, source, a.stateHooks):
			return pattern.PurposeLogic
		case HasControlFlow(node):
			return pattern.PurposeLogic
		case strings.HasPrefix(name, "use"):
			return pattern.PurposeLogic
		}
		return pattern.PurposeUtility

	case syntax.ClassDecl:
		return pattern.PurposeUtility
	}
	return pattern.PurposeUtility
}

func purposeByName(name string) pattern.Purpose {
	lower := strings.ToLower(name)
	for _, s := range dataNames {
		if strings.Contains(lower, s) {
			return pattern.PurposeData
		}
	}
	for _, s := range uiNames {
		if strings.Contains(lower, s) {
			return pattern.PurposeUI
		}
	}
	return pattern.PurposeData
}

// nameNode returns the identifier node that declares the shape's name, if any.
func nameNode(shape syntax.Shape) *sitter.Node {
	switch s := shape.(type) {
	case syntax.FunctionVar:
		return s.Declarator.ChildByFieldName("name")
	case syntax.ConstantVar:
		return s.Declarator.ChildByFieldName("name")
	case syntax.FunctionExpr:
		return s.Func.ChildByFieldName("name")
	case syntax.WrapperCall:
		if s.Target != nil && s.Target.Kind() == "identifier" {
			return s.Target
		}
		return nil
	case syntax.FunctionDecl, syntax.InterfaceDecl, syntax.TypeAliasDecl, syntax.EnumDecl, syntax.ClassDecl, syntax.MethodDecl:
		return s.Node().ChildByFieldName("name")
	}
	return nil
}
