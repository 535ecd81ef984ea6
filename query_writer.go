package graphql

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/iancoleman/strcase"

	"github.com/llehouerou/go-graphql-variants/internal/reflectutil"
	"github.com/llehouerou/go-graphql-variants/types"
)

// fieldOutput contains the processed information for a struct field
// used during selection construction
type fieldOutput struct {
	shouldSkip bool
	name       string
	isInline   bool
	isScalar   bool
}

// processStructField processes a single struct field and returns
// information needed for selection construction
func processStructField(f reflect.StructField) fieldOutput {
	if f.PkgPath != "" && !f.Anonymous {
		// Unexported field.
		return fieldOutput{shouldSkip: true}
	}

	value, ok := f.Tag.Lookup(types.GraphQLTag)
	// Skip this field if the tag value is hyphen
	if value == "-" {
		return fieldOutput{shouldSkip: true}
	}

	inlineField := f.Anonymous && !ok
	var fieldName string
	if !inlineField {
		if ok {
			fieldName = value
		} else {
			fieldName = strcase.ToLowerCamel(f.Name)
		}
	}

	return fieldOutput{
		name:     fieldName,
		isInline: inlineField,
		isScalar: reflectutil.IsTrue(f.Tag.Get(types.ScalarTag)),
	}
}

// writeStructFields writes one line (or block) per field of the struct
// type t, without surrounding braces.
func writeStructFields(
	sw *selectionWriter,
	t reflect.Type,
	v reflect.Value,
) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fieldVal := reflectutil.FieldSafe(v, i)
		output := processStructField(f)

		if output.shouldSkip {
			continue
		}

		if output.isInline {
			ft, fv := f.Type, fieldVal
			for ft.Kind() == reflect.Ptr {
				ft, fv = ft.Elem(), reflectutil.ElemSafe(fv)
			}
			if ft.Kind() != reflect.Struct {
				return fmt.Errorf("embedded field `%v` is not a struct", f.Name)
			}
			err := writeStructFields(sw, ft, fv)
			if err != nil {
				return fmt.Errorf(
					"failed to write selection for embedded field `%v`: %w",
					f.Name,
					err,
				)
			}
			continue
		}

		// Don't expand fields tagged as scalars.
		if output.isScalar {
			sw.line(output.name)
			continue
		}

		err := writeQuery(sw, output.name, f.Type, fieldVal)
		if err != nil {
			return fmt.Errorf(
				"failed to write selection for struct field `%v`: %w",
				f.Name,
				err,
			)
		}
	}
	return nil
}

// writeStructQuery writes the selection of a struct typed field.
func writeStructQuery(
	sw *selectionWriter,
	head string,
	t reflect.Type,
	v reflect.Value,
) error {
	if renderer, ok := selectionRendererOf(t); ok {
		sw.open(head)
		sw.block(renderer.GraphQLSelection())
		sw.close()
		return nil
	}

	if v.IsValid() && reflectutil.IsWrapperType(v) {
		wrapped := reflectutil.UnwrapValue(v)
		if wrapped.IsValid() {
			return writeQuery(sw, head, wrapped.Type(), wrapped)
		}
	}

	// If the type implements json.Unmarshaler, it's a scalar. Don't expand it.
	if reflect.PointerTo(t).Implements(jsonUnmarshaler) {
		sw.line(head)
		return nil
	}

	sw.open(head)
	err := writeStructFields(sw, t, v)
	sw.close()
	return err
}

// writeInterfaceQuery writes the selection of an interface typed field
// from its dynamic value. A nil interface is a leaf.
func writeInterfaceQuery(
	sw *selectionWriter,
	head string,
	t reflect.Type,
	v reflect.Value,
) error {
	if !v.IsValid() || v.IsNil() {
		sw.line(head)
		return nil
	}
	val := reflect.ValueOf(v.Interface())
	if reflectutil.IsNilValue(val) {
		sw.line(head)
		return nil
	}
	err := writeQuery(sw, head, val.Type(), val)
	if err != nil {
		return fmt.Errorf("failed to write selection for interface `%v`: %w", t, err)
	}
	return nil
}

// writeQuery writes the selection of a field named head with type t.
// Leaf types write head alone; structs write head followed by a block.
func writeQuery(
	sw *selectionWriter,
	head string,
	t reflect.Type,
	v reflect.Value,
) error {
	switch t.Kind() {
	case reflect.Interface:
		return writeInterfaceQuery(sw, head, t, v)
	case reflect.Ptr:
		if t.Implements(jsonUnmarshaler) && t.Elem().Kind() != reflect.Struct {
			sw.line(head)
			return nil
		}
		err := writeQuery(sw, head, t.Elem(), reflectutil.ElemSafe(v))
		if err != nil {
			return fmt.Errorf("failed to write selection for ptr `%v`: %w", t, err)
		}
	case reflect.Struct:
		return writeStructQuery(sw, head, t, v)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// []byte and json.RawMessage hold raw values.
			sw.line(head)
			return nil
		}
		err := writeQuery(sw, head, t.Elem(), reflectutil.IndexSafe(v, 0))
		if err != nil {
			return fmt.Errorf("failed to write selection for slice item `%v`: %w", t, err)
		}
	case reflect.Map:
		return fmt.Errorf("type %v is not supported, tag the field with scalar:\"true\"", t)
	default:
		sw.line(head)
	}
	return nil
}

// selectionRendererOf returns the zero value of t as a SelectionRenderer
// if t or *t implements it.
func selectionRendererOf(t reflect.Type) (SelectionRenderer, bool) {
	if t.Implements(selectionRendererType) {
		r, ok := reflect.Zero(t).Interface().(SelectionRenderer)
		return r, ok
	}
	if reflect.PointerTo(t).Implements(selectionRendererType) {
		r, ok := reflect.New(t).Interface().(SelectionRenderer)
		return r, ok
	}
	return nil, false
}

var (
	jsonUnmarshaler       = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	selectionRendererType = reflect.TypeOf((*SelectionRenderer)(nil)).Elem()
)
