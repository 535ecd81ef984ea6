package graphql

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/llehouerou/go-graphql-variants/internal/tagparser"
	"github.com/llehouerou/go-graphql-variants/pkg/jsonutil"
	"github.com/llehouerou/go-graphql-variants/types"
)

// structFragment derives its selection from the fields of T and decodes
// with jsonutil.
type structFragment[S types.GraphQLType, T any] struct {
	selection string
}

// NewStructFragment returns a fragment selecting the fields of the struct
// T on the schema type S.
//
// Fields are named by their graphql tag, or by the lower camel case Go
// name. A tag may carry an alias and arguments, e.g.
// `graphql:"node1: node(id: $id)"`. Nested positions (see Polymorphic)
// are rendered when the fragment is built, so they must be initialized
// first.
func NewStructFragment[S types.GraphQLType, T any]() (Fragment[S, T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("fragment type must be a struct, got %v", t)
	}
	var b strings.Builder
	err := writeStructFields(newSelectionWriter(&b, 0), t, reflect.Value{})
	if err != nil {
		return nil, fmt.Errorf(
			"failed to build selection of %v on %s: %w",
			t,
			types.TypeName[S](),
			err,
		)
	}
	return &structFragment[S, T]{selection: b.String()}, nil
}

// StructFragment is like NewStructFragment but panics on error.
func StructFragment[S types.GraphQLType, T any]() Fragment[S, T] {
	f, err := NewStructFragment[S, T]()
	if err != nil {
		panic("graphql: " + err.Error())
	}
	return f
}

func (f *structFragment[S, T]) SchemaType() S {
	var s S
	return s
}

func (f *structFragment[S, T]) Selection() string {
	return f.selection
}

func (f *structFragment[S, T]) Decode(data []byte) (T, error) {
	var out T
	err := jsonutil.UnmarshalGraphQL(data, &out)
	return out, err
}

type funcFragment[S types.GraphQLType, T any] struct {
	selection string
	decode    func(data []byte) (T, error)
}

// FuncFragment returns a fragment from a hand written selection and
// decoder.
func FuncFragment[S types.GraphQLType, T any](
	selection string,
	decode func(data []byte) (T, error),
) Fragment[S, T] {
	return &funcFragment[S, T]{selection: selection, decode: decode}
}

func (f *funcFragment[S, T]) SchemaType() S {
	var s S
	return s
}

func (f *funcFragment[S, T]) Selection() string {
	return f.selection
}

func (f *funcFragment[S, T]) Decode(data []byte) (T, error) {
	return f.decode(data)
}

// FieldsFragment returns a fragment selecting a flat list of fields. It
// decodes to the raw value of each selected field, keyed by response
// name; other fields are dropped.
func FieldsFragment[S types.GraphQLType](fields ...string) Fragment[S, map[string]json.RawMessage] {
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		parsed, err := tagparser.ParseGraphQLTag(field)
		if err != nil || parsed.IsFragment || parsed.FieldName == "" {
			continue
		}
		keys = append(keys, parsed.ResponseKey())
	}
	return FuncFragment[S](
		strings.Join(fields, "\n"),
		func(data []byte) (map[string]json.RawMessage, error) {
			var all map[string]json.RawMessage
			err := json.Unmarshal(data, &all)
			if err != nil {
				return nil, err
			}
			out := make(map[string]json.RawMessage, len(keys))
			for _, key := range keys {
				if v, ok := all[key]; ok {
					out[key] = v
				}
			}
			return out, nil
		},
	)
}
