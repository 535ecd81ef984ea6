// Package jsonutil provides a function for decoding JSON
// into a GraphQL query data structure.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/llehouerou/go-graphql-variants/internal/reflectutil"
	"github.com/llehouerou/go-graphql-variants/internal/tagparser"
	"github.com/llehouerou/go-graphql-variants/types"
)

// UnmarshalGraphQL parses the JSON-encoded GraphQL response data and stores
// the result in the GraphQL query data structure pointed to by v.
//
// The implementation is created on top of the JSON tokenizer available
// in "encoding/json".Decoder.
//
// Object keys without a matching struct field are skipped, so a response
// may carry more fields than the query structure declares (__typename,
// fields of other fragments). Fields whose type decodes itself
// (json.Unmarshaler, maps, interfaces) receive the raw JSON value.
//
// # Wrapper Types
//
// Any type implementing GetGraphQLWrapped() MUST have an exported field
// named "Value" holding the wrapped data. JSON data is unmarshaled
// directly into that field, bypassing the wrapper.
func UnmarshalGraphQL(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err := (&decoder{tokenizer: dec}).Decode(v)
	if err != nil {
		return err
	}
	tok, err := dec.Token()
	switch err {
	case io.EOF:
		// Expect to get io.EOF. There shouldn't be any more
		// tokens left after we've decoded v successfully.
		return nil
	case nil:
		return fmt.Errorf("invalid token '%v' after top-level value", tok)
	default:
		return err
	}
}

// decoder is a JSON decoder that performs custom unmarshaling behavior
// for GraphQL query data structures. It's implemented on top of a JSON tokenizer.
type decoder struct {
	tokenizer interface {
		Token() (json.Token, error)
		Decode(v any) error
	}

	// Stack of what part of input JSON we're in the middle of - objects, arrays.
	parseState []json.Delim

	// Stacks of values where current parsing is being done.
	// A stack is needed for each embedded struct, since a single JSON
	// object is unmarshaled into all of them at once. Stacks of
	// embedded structs disappear when their object ends.
	vs []stack
}

type stack []reflect.Value

func (s stack) Top() reflect.Value {
	return s[len(s)-1]
}

func (s stack) Pop() stack {
	return s[:len(s)-1]
}

// Decode decodes a single JSON value from d.tokenizer into v.
func (d *decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("cannot decode into non-pointer %T", v)
	}
	d.vs = []stack{{rv.Elem()}}
	return d.decode()
}

// decode decodes a single JSON value from d.tokenizer into d.vs.
func (d *decoder) decode() error {
	// The loop invariant is that the top of each d.vs stack
	// is where we try to unmarshal the next JSON value we see.
	for len(d.vs) > 0 {
		tok, err := d.tokenizer.Token()
		if err == io.EOF {
			return errors.New("unexpected end of JSON input")
		} else if err != nil {
			return err
		}

		switch {

		// Are we inside an object and seeing next key (rather than end of object)?
		case d.state() == '{' && tok != json.Delim('}'):
			key, ok := tok.(string)
			if !ok {
				return errors.New("unexpected non-key in JSON input")
			}
			var found bool
			tok, found, err = d.decodeObjectKey(key)
			if err != nil {
				return err
			}
			if !found {
				// The value was skipped, the object continues.
				continue
			}

		// Are we inside an array and seeing next value (rather than end of array)?
		case d.state() == '[' && tok != json.Delim(']'):
			err = d.decodeArrayValue()
			if err != nil {
				return err
			}
		}

		switch tok := tok.(type) {
		case string, json.Number, bool, nil, json.RawMessage:
			err := d.decodeScalarValue(tok)
			if err != nil {
				return err
			}

		case json.Delim:
			err := d.handleDelimiter(tok)
			if err != nil {
				return err
			}

		default:
			return errors.New("unexpected token in JSON input")
		}
	}
	return nil
}

// decodeObjectKey looks up key in every value stack. When no stack has a
// matching field the value is consumed and found is false. Otherwise the
// fields are pushed and the next token, or the whole raw value for fields
// that decode themselves, is returned.
func (d *decoder) decodeObjectKey(key string) (tok any, found bool, err error) {
	fields, found, raw := d.findFieldsForKey(key)
	if !found {
		var skipped json.RawMessage
		err := d.tokenizer.Decode(&skipped)
		return nil, false, err
	}

	for i := range d.vs {
		d.vs[i] = append(d.vs[i], fields[i])
	}

	if raw {
		var data json.RawMessage
		err := d.tokenizer.Decode(&data)
		if err != nil {
			return nil, true, err
		}
		return data, true, nil
	}

	// We've just consumed the current token, which was the key.
	// Read the next token, which should be the value,
	// and let the rest of code process it.
	tok, err = d.tokenizer.Token()
	if err == io.EOF {
		return nil, true, errors.New("unexpected end of JSON input")
	} else if err != nil {
		return nil, true, err
	}
	return tok, true, nil
}

// findFieldsForKey returns the field matching key for each value stack
// (invalid where there is none), whether any stack has one, and whether
// one of them must receive the raw JSON value.
func (d *decoder) findFieldsForKey(key string) (fields []reflect.Value, found, raw bool) {
	fields = make([]reflect.Value, len(d.vs))
	for i := range d.vs {
		v := reflectutil.UnwrapToConcreteValue(d.vs[i].Top())
		if v.Kind() != reflect.Struct {
			continue
		}

		f, scalar := fieldByGraphQLName(v, key)
		if !f.IsValid() {
			continue
		}
		// Wrapper types are unmarshaled directly into their Value field.
		if unwrapped := reflectutil.UnwrapValueField(f); unwrapped.IsValid() {
			f = unwrapped
		}
		if scalar || decodesItself(f.Type()) {
			raw = true
		}
		fields[i] = f
		found = true
	}
	return fields, found, raw
}

// decodeArrayValue appends a new element to the slices on top of the
// value stacks, to decode the next array value into.
func (d *decoder) decodeArrayValue() error {
	someSliceExist := false
	for i := range d.vs {
		v := reflectutil.UnwrapToConcreteValue(d.vs[i].Top())
		if unwrapped := reflectutil.UnwrapValueField(v); unwrapped.IsValid() {
			v = unwrapped
		}

		var f reflect.Value
		if v.Kind() == reflect.Slice {
			v.Set(reflect.Append(v, reflect.Zero(v.Type().Elem()))) // v = append(v, T).
			f = v.Index(v.Len() - 1)
			someSliceExist = true
		}
		d.vs[i] = append(d.vs[i], f)
	}
	if !someSliceExist {
		return fmt.Errorf(
			"slice doesn't exist in any of %v places to unmarshal",
			len(d.vs),
		)
	}
	return nil
}

// decodeScalarValue handles decoding of scalar values
// (string, number, bool, nil, json.RawMessage).
func (d *decoder) decodeScalarValue(tok any) error {
	for i := range d.vs {
		v := d.vs[i].Top()
		if !v.IsValid() {
			continue
		}
		err := unmarshalValue(tok, v)
		if err != nil {
			return err
		}
	}
	d.popAll()
	return nil
}

// handleDelimiter handles JSON delimiter tokens ('{', '[', '}', ']').
func (d *decoder) handleDelimiter(tok json.Delim) error {
	switch tok {
	case '{':
		return d.decodeObjectStart()
	case '[':
		return d.decodeArrayStart()
	case '}', ']':
		d.popAll()
		d.popState()
	default:
		return errors.New("unexpected delimiter in JSON input")
	}
	return nil
}

// decodeObjectStart handles the start of a JSON object ('{' token).
// It allocates nil pointers and adds a value stack for every embedded
// struct found, recursively.
func (d *decoder) decodeObjectStart() error {
	d.pushState('{')

	frontier := make([]reflect.Value, len(d.vs))
	for i := range d.vs {
		v := d.vs[i].Top()
		if !v.IsValid() {
			continue
		}
		if v.Kind() == reflect.Ptr && v.IsNil() {
			v.Set(reflect.New(v.Type().Elem())) // v = new(T).
		}
		if concrete := reflectutil.UnwrapToConcreteValue(v); concrete.Kind() != reflect.Struct {
			return fmt.Errorf("cannot unmarshal object into Go value of type %v", v.Type())
		}
		frontier[i] = v
	}
	for len(frontier) > 0 {
		v := frontier[0]
		frontier = frontier[1:]
		v = reflectutil.UnwrapToConcreteValue(v)
		if v.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < v.NumField(); i++ {
			field := v.Type().Field(i)
			if !field.Anonymous {
				continue
			}
			if _, tagged := field.Tag.Lookup(types.GraphQLTag); tagged {
				continue
			}
			fv := v.Field(i)
			if fv.Kind() == reflect.Ptr && fv.IsNil() && fv.CanSet() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			d.vs = append(d.vs, stack{fv})
			frontier = append(frontier, fv)
		}
	}
	return nil
}

// decodeArrayStart handles the start of a JSON array ('[' token).
// It resets the slices on top of the value stacks.
func (d *decoder) decodeArrayStart() error {
	d.pushState('[')

	for i := range d.vs {
		v := d.vs[i].Top()
		if !v.IsValid() {
			continue
		}
		// Initialize nil pointers before unwrapping.
		// This handles cases like *[]string where the pointer is nil.
		if v.Kind() == reflect.Ptr && v.IsNil() {
			v.Set(reflect.New(v.Type().Elem())) // v = new(T).
		}
		s := reflectutil.UnwrapToConcreteValue(v)
		if unwrapped := reflectutil.UnwrapValueField(s); unwrapped.IsValid() {
			s = unwrapped
		}
		if s.Kind() != reflect.Slice {
			return fmt.Errorf("cannot unmarshal array into Go value of type %v", v.Type())
		}
		s.Set(reflect.MakeSlice(s.Type(), 0, 0)) // s = make(T, 0, 0).
	}
	return nil
}

// popAll pops from all stacks, keeping only non-empty ones.
func (d *decoder) popAll() {
	var nonEmpty []stack
	for i := range d.vs {
		d.vs[i] = d.vs[i].Pop()
		if len(d.vs[i]) > 0 {
			nonEmpty = append(nonEmpty, d.vs[i])
		}
	}
	d.vs = nonEmpty
}

// pushState pushes a new parse state s onto the stack.
func (d *decoder) pushState(s json.Delim) {
	d.parseState = append(d.parseState, s)
}

// popState pops a parse state (already obtained) off the stack.
// The stack must be non-empty.
func (d *decoder) popState() {
	d.parseState = d.parseState[:len(d.parseState)-1]
}

// state reports the parse state on top of stack, or 0 if empty.
func (d *decoder) state() json.Delim {
	if len(d.parseState) == 0 {
		return 0
	}
	return d.parseState[len(d.parseState)-1]
}

// decodesItself reports whether values of type t are decoded by
// encoding/json from their raw JSON rather than field by field. Lists
// decode themselves when their elements do.
func decodesItself(t reflect.Type) bool {
	for {
		if reflect.PointerTo(t).Implements(jsonUnmarshaler) {
			return true
		}
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Interface, reflect.Map:
			return true
		default:
			return false
		}
	}
}

// fieldByGraphQLName returns an exported struct field of struct v
// that matches GraphQL name, or invalid reflect.Value if none found.
func fieldByGraphQLName(
	v reflect.Value,
	name string,
) (val reflect.Value, taggedAsScalar bool) {
	for i := 0; i < v.NumField(); i++ {
		if v.Type().Field(i).PkgPath != "" {
			// Skip unexported field.
			continue
		}
		if hasGraphQLName(v.Type().Field(i), name) {
			return v.Field(i), reflectutil.IsTrue(v.Type().Field(i).Tag.Get(types.ScalarTag))
		}
	}
	return reflect.Value{}, false
}

// hasGraphQLName reports whether struct field f has GraphQL name.
func hasGraphQLName(f reflect.StructField, name string) bool {
	value, ok := f.Tag.Lookup(types.GraphQLTag)
	if !ok {
		// Fall back to case-insensitive comparison when no graphql tag is
		// present. Embedded structs have no name of their own.
		return !f.Anonymous && strings.EqualFold(f.Name, name)
	}
	parsed, err := tagparser.ParseGraphQLTag(value)
	if err != nil || parsed.IsFragment {
		return false
	}
	return parsed.ResponseKey() == name
}

// unmarshalValue unmarshals JSON value into v.
// v must be addressable and not obtained by the use of unexported
// struct fields, otherwise unmarshalValue will panic.
func unmarshalValue(value any, v reflect.Value) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ty := v.Type()
	if ty.Kind() == reflect.Interface {
		if !v.Elem().IsValid() {
			return json.Unmarshal(b, v.Addr().Interface())
		}
		ty = v.Elem().Type()
	}
	newVal := reflect.New(ty)
	err = json.Unmarshal(b, newVal.Interface())
	if err != nil {
		return err
	}
	v.Set(newVal.Elem())
	return nil
}

var jsonUnmarshaler = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
