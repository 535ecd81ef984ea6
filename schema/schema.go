// Package schema loads GraphQL schema metadata used to validate polymorphic
// positions and the operations rendered from them.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

var (
	ErrUnknownType     = errors.New("unknown type")
	ErrNotAbstractType = errors.New("type is neither a union nor an interface")
)

// Schema wraps a parsed and validated schema.
type Schema struct {
	name   string
	schema *ast.Schema
}

// Load parses sdl. name identifies the source in error messages.
func Load(name, sdl string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// Name returns the source name the schema was loaded from.
func (s *Schema) Name() string {
	return s.name
}

// PossibleTypes returns the sorted names of the object types abstractType
// can resolve to.
func (s *Schema) PossibleTypes(abstractType string) ([]string, error) {
	def, ok := s.schema.Types[abstractType]
	if !ok {
		return nil, fmt.Errorf("%w %q in schema %s", ErrUnknownType, abstractType, s.name)
	}
	if !def.IsAbstractType() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAbstractType, abstractType, def.Kind)
	}

	possible := s.schema.GetPossibleTypes(def)
	names := make([]string, 0, len(possible))
	for _, t := range possible {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateQuery parses query and validates it against the schema. The
// messages of all problems found are joined on one line.
func (s *Schema) ValidateQuery(query string) error {
	_, errs := gqlparser.LoadQuery(s.schema, query)
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Error()
	}
	return &ValidationError{
		Errors:  errs,
		message: strings.Join(messages, "; "),
	}
}

// ValidationError lists the problems found in an operation.
type ValidationError struct {
	Errors  gqlerror.List
	message string
}

func (e *ValidationError) Error() string {
	return "invalid operation: " + e.message
}
