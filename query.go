package graphql

import (
	"fmt"
	"reflect"
	"strings"
)

type constructOptionsOutput struct {
	operationName       string
	operationDirectives []string
}

func (coo constructOptionsOutput) OperationDirectivesString() string {
	return strings.Join(coo.operationDirectives, " ")
}

func constructOptions(options []Option) (*constructOptionsOutput, error) {
	output := &constructOptionsOutput{}

	for _, option := range options {
		switch option.Type() {
		case optionTypeOperationName:
			output.operationName = option.String()
		case OptionTypeOperationDirective:
			output.operationDirectives = append(
				output.operationDirectives,
				option.String(),
			)
		default:
			return nil, fmt.Errorf("invalid query option type: %s", option.Type())
		}
	}

	return output, nil
}

// hasVariables checks if variables exist and should be used.
// Returns false for nil or empty maps, true otherwise.
func hasVariables(variables any) bool {
	if variables == nil {
		return false
	}
	reflectVal := reflect.ValueOf(variables)
	// If it's not a map, we have variables
	// If it's a map, only return true if it has entries
	return reflectVal.Kind() != reflect.Map || reflectVal.Len() > 0
}

// constructOperation builds an operation document whose root selection
// is written by body.
//
// operationType should be "query" or "mutation". A query without name,
// variables or directives is written in its shorthand form "{ ... }".
func constructOperation(
	operationType string,
	variables any,
	body func(sw *selectionWriter) error,
	options ...Option,
) (string, error) {
	optionsOutput, err := constructOptions(options)
	if err != nil {
		return "", err
	}

	head := operationType
	if optionsOutput.operationName != "" {
		head += " " + optionsOutput.operationName
	}
	if hasVariables(variables) {
		head += "(" + queryArguments(variables) + ")"
	}
	if directives := optionsOutput.OperationDirectivesString(); directives != "" {
		head += " " + directives
	}

	var b strings.Builder
	sw := newSelectionWriter(&b, 0)
	if head == "query" {
		sw.line("{")
		sw.depth++
	} else {
		sw.open(head)
	}
	err = body(sw)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", operationType, err)
	}
	sw.close()
	if sw.err != nil {
		return "", sw.err
	}
	return b.String(), nil
}

func operationFields(v any) func(sw *selectionWriter) error {
	return func(sw *selectionWriter) error {
		t := reflect.TypeOf(v)
		if t == nil {
			return fmt.Errorf("cannot build an operation from nil")
		}
		val := reflect.ValueOf(v)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
			if val.IsValid() && !val.IsNil() {
				val = val.Elem()
			} else {
				val = reflect.Value{}
			}
		}
		if t.Kind() != reflect.Struct {
			return fmt.Errorf("operation must be a struct, got %v", t)
		}
		return writeStructFields(sw, t, val)
	}
}

// positionField writes field with the selection of a position.
func positionField(field string, renderer SelectionRenderer) func(sw *selectionWriter) error {
	return func(sw *selectionWriter) error {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("empty root field")
		}
		sw.open(field)
		sw.block(renderer.GraphQLSelection())
		sw.close()
		return nil
	}
}

// ConstructQuery builds a GraphQL query document from struct and variables
func ConstructQuery(v any, variables any, options ...Option) (string, error) {
	return constructOperation("query", variables, operationFields(v), options...)
}

// ConstructMutation builds a GraphQL mutation document from struct and variables
func ConstructMutation(
	v any,
	variables any,
	options ...Option,
) (string, error) {
	return constructOperation("mutation", variables, operationFields(v), options...)
}

// ConstructPositionQuery builds a query selecting a single root field
// through a position. field may carry an alias and arguments, e.g.
// `post: node(id: $id)`.
func ConstructPositionQuery[U any](
	field string,
	position *Position[U],
	variables any,
	options ...Option,
) (string, error) {
	return constructOperation("query", variables, positionField(field, position), options...)
}
