package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	graphql "github.com/llehouerou/go-graphql-variants"
	"github.com/llehouerou/go-graphql-variants/internal/tagparser"
)

// Value is the union value decoded at a declared position.
type Value struct {
	TypeName string                     `json:"__typename,omitempty"`
	Fallback bool                       `json:"fallback,omitempty"`
	Fields   map[string]json.RawMessage `json:"fields,omitempty"`
}

const (
	fallbackUnit    = "unit"
	fallbackCapture = "capture"
	fallbackNone    = "none"
)

// buildPosition compiles decl. meta may be nil.
func buildPosition(
	decl PositionDeclaration,
	meta graphql.SchemaMetadata,
) (*graphql.Position[Value], error) {
	variants := make([]graphql.PossibleVariant[Value], 0, len(decl.Variants))
	for _, v := range decl.Variants {
		decode, err := fieldsDecoder(v.Type, v.Fields)
		if err != nil {
			return nil, fmt.Errorf("position %s: variant %s: %w", decl.Name, v.Type, err)
		}
		variants = append(
			variants,
			graphql.OnTypeName(v.Type, strings.Join(v.Fields, "\n"), decode),
		)
	}

	var (
		fallback graphql.FallbackPolicy[Value]
		options  []graphql.PositionOption
	)
	switch decl.Fallback {
	case fallbackUnit, "":
		fallback = graphql.Unit(Value{Fallback: true})
	case fallbackCapture:
		fallback = graphql.Capture(func(typename string) Value {
			return Value{TypeName: typename, Fallback: true}
		})
	case fallbackNone:
		fallback = graphql.NoFallback[Value]()
		options = append(options, graphql.AllowMissingFallback())
	default:
		return nil, fmt.Errorf(
			"position %s: unknown fallback %q, want %s, %s or %s",
			decl.Name,
			decl.Fallback,
			fallbackUnit,
			fallbackCapture,
			fallbackNone,
		)
	}
	if decl.Exhaustive {
		options = append(options, graphql.Exhaustive())
	}
	if meta != nil {
		options = append(options, graphql.WithSchema(meta, decl.Type))
	}

	p, err := graphql.NewPosition(variants, fallback, options...)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", decl.Name, err)
	}
	return p, nil
}

// fieldsDecoder returns a decoder keeping the raw value of every selected
// field present in the object.
func fieldsDecoder(typeName string, fields []string) (func([]byte) (Value, error), error) {
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		parsed, err := tagparser.ParseGraphQLTag(field)
		if err != nil {
			return nil, err
		}
		if parsed.IsFragment || parsed.FieldName == "" {
			return nil, fmt.Errorf("%q is not a field", field)
		}
		keys = append(keys, parsed.ResponseKey())
	}

	return func(data []byte) (Value, error) {
		root := gjson.ParseBytes(data)
		out := Value{TypeName: typeName, Fields: make(map[string]json.RawMessage, len(keys))}
		for _, key := range keys {
			r := root.Get(key)
			if r.Exists() {
				out.Fields[key] = json.RawMessage(r.Raw)
			}
		}
		return out, nil
	}, nil
}
