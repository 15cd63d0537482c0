package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/scenepack/internal/domain/scene"
)

// ObjectEnv defines the variables available during filter expression evaluation.
type ObjectEnv struct {
	Name       string `expr:"name"`
	Type       string `expr:"type"`
	Collection string `expr:"collection"`
	Hidden     bool   `expr:"hidden"`
}

// CompileObjectFilter compiles a boolean filter expression over ObjectEnv.
func CompileObjectFilter(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(ObjectEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return program, nil
}

// ObjectFilter narrows which host objects reach extraction.
type ObjectFilter struct {
	excludeNames       map[string]bool
	includeCollections map[string]bool

	filterProgram *vm.Program
}

// NewObjectFilter initializes a new empty filter that admits every object.
func NewObjectFilter() *ObjectFilter {
	return &ObjectFilter{
		excludeNames:       make(map[string]bool),
		includeCollections: make(map[string]bool),
	}
}

// WithExcludedNames excludes objects by exact name.
func (f *ObjectFilter) WithExcludedNames(names []string) *ObjectFilter {
	f.excludeNames = toSet(names)
	return f
}

// WithIncludedCollections includes only objects from these collections.
func (f *ObjectFilter) WithIncludedCollections(collections []string) *ObjectFilter {
	f.includeCollections = toSet(collections)
	return f
}

// WithFilterExpression applies a compiled Expr program for advanced filtering.
func (f *ObjectFilter) WithFilterExpression(program *vm.Program) *ObjectFilter {
	f.filterProgram = program
	return f
}

// Admit determines if an object should be extracted.
// Returns true if admitted, or false with a reason.
func (f *ObjectFilter) Admit(obj *scene.Object) (bool, string) {
	if f == nil {
		return true, ""
	}

	if f.excludeNames[obj.Name] {
		return false, "excluded by name"
	}

	if len(f.includeCollections) > 0 && !f.includeCollections[obj.Collection] {
		return false, fmt.Sprintf("collection %q not included", obj.Collection)
	}

	if f.filterProgram == nil {
		return true, ""
	}

	env := ObjectEnv{
		Name:       obj.Name,
		Type:       obj.Type,
		Collection: obj.Collection,
		Hidden:     obj.Hidden,
	}

	output, err := expr.Run(f.filterProgram, env)
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}
	if !result {
		return false, "excluded by --filter expression"
	}

	return true, ""
}

func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
