package graphql

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/llehouerou/go-graphql-variants/internal/reflectutil"
)

// argumentFieldInfo holds information about a struct field used for GraphQL query arguments.
type argumentFieldInfo struct {
	jsonName  string
	fieldType reflect.Type
	value     reflect.Value
}

// queryArguments constructs the variable definitions of an operation.
//
// E.g., map[string]any{"a": int(123), "b": true} -> "$a: Int!, $b: Boolean!".
func queryArguments(variables any) string {
	var b strings.Builder

	switch v := variables.(type) {
	case map[string]any:
		writeArgumentsFromMap(&b, v)
	default:
		fields := collectStructFieldsForArguments(variables)
		writeArgumentsFromFields(&b, fields)
	}

	return b.String()
}

// writeArgumentsFromMap writes variable definitions from a map of variables.
// Keys are sorted alphabetically for deterministic output.
func writeArgumentsFromMap(w io.Writer, variables map[string]any) {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		writeArgumentName(w, i, k)
		writeArgumentType(w, reflect.TypeOf(variables[k]), variables[k], true)
	}
}

// collectStructFieldsForArguments extracts field information from a struct for use in GraphQL arguments.
// It validates the struct, collects exported fields with json tags, and returns them sorted by json name.
func collectStructFieldsForArguments(variables any) []argumentFieldInfo {
	val := reflect.ValueOf(variables)
	typ := reflect.TypeOf(variables)

	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("variables must be a struct or a map; got %T", variables))
	}

	var fields []argumentFieldInfo

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)

		// Skip unexported fields
		if field.PkgPath != "" {
			continue
		}

		jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if jsonName == "" || jsonName == "-" {
			continue
		}

		fields = append(fields, argumentFieldInfo{
			jsonName:  jsonName,
			fieldType: field.Type,
			value:     val.Field(i),
		})
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].jsonName < fields[j].jsonName
	})

	return fields
}

// writeArgumentsFromFields writes variable definitions from collected field information.
func writeArgumentsFromFields(w io.Writer, fields []argumentFieldInfo) {
	for i, f := range fields {
		writeArgumentName(w, i, f.jsonName)
		writeArgumentType(w, f.fieldType, f.value.Interface(), true)
	}
}

func writeArgumentName(w io.Writer, i int, name string) {
	if i > 0 {
		_, _ = io.WriteString(w, ", ")
	}
	_, _ = io.WriteString(w, "$"+name+": ")
}

// writeArgumentType writes a GraphQL type for t to w.
// value indicates whether t is a value (required) type or pointer (optional) type.
// If value is true, then "!" is written at the end of t.
func writeArgumentType(w io.Writer, t reflect.Type, v any, value bool) {
	if reflectutil.ImplementsGraphQLType(t) {
		value = value && t.Kind() != reflect.Ptr
		var typeName string
		var ok bool

		// Try to use the actual value first if provided
		if v != nil {
			typeName, ok = reflectutil.GetGraphQLType(reflect.ValueOf(v), t)
		}
		if !ok {
			typeName, ok = reflectutil.GetGraphQLTypeFromType(t)
		}

		if ok {
			_, _ = io.WriteString(w, typeName)
			if value {
				_, _ = io.WriteString(w, "!")
			}
			return
		}
	}

	if t.Kind() == reflect.Ptr {
		// Pointer is an optional type, so no "!" at the end of the pointer's underlying type.
		writeArgumentType(w, t.Elem(), nil, false)
		return
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		// List. E.g., "[Int!]".
		_, _ = io.WriteString(w, "[")
		writeArgumentType(w, t.Elem(), nil, true)
		_, _ = io.WriteString(w, "]")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, _ = io.WriteString(w, "Int")
	case reflect.Float32, reflect.Float64:
		_, _ = io.WriteString(w, "Float")
	case reflect.Bool:
		_, _ = io.WriteString(w, "Boolean")
	default:
		n := t.Name()
		if n == "string" {
			n = "String"
		}
		_, _ = io.WriteString(w, n)
	}

	if value {
		_, _ = io.WriteString(w, "!")
	}
}
