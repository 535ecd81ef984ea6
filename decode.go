package graphql

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/llehouerou/go-graphql-variants/types"
)

// Decode decodes one response object into the union value.
//
// The object must carry a string __typename. The first variant whose type
// name equals it decodes the whole object; fields it does not select are
// ignored. Without a match the fallback policy decides. Input that is
// not a single JSON value fails with ErrInvalidJSON.
func (p *Position[U]) Decode(data []byte) (U, error) {
	var zero U

	typename, err := readDiscriminator(data)
	if err != nil {
		return zero, err
	}

	for _, v := range p.variants {
		if v.typeName != typename {
			continue
		}
		out, err := v.decode(data)
		if err != nil {
			return zero, &VariantError{TypeName: typename, Err: err}
		}
		return out, nil
	}

	return p.fallback.resolve(typename)
}

// DecodeValue decodes an already parsed response object, such as a
// map[string]any produced by encoding/json.
func (p *Position[U]) DecodeValue(v any) (U, error) {
	data, err := json.Marshal(v)
	if err != nil {
		var zero U
		return zero, fmt.Errorf("failed to encode response value: %w", err)
	}
	return p.Decode(data)
}

func (f FallbackPolicy[U]) resolve(typename string) (U, error) {
	switch f.kind {
	case FallbackUnit:
		return f.marker, nil
	case FallbackCapturing:
		return f.capture(typename), nil
	default:
		var zero U
		return zero, &UnhandledVariantError{TypeName: typename}
	}
}

func readDiscriminator(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return "", &MissingDiscriminatorError{
			Field:  types.TypenameField,
			Reason: "value is not an object",
		}
	}

	var (
		discriminator gjson.Result
		found         bool
	)
	// The last occurrence wins, as with encoding/json.
	root.ForEach(func(key, value gjson.Result) bool {
		if key.Str == types.TypenameField {
			discriminator, found = value, true
		}
		return true
	})

	switch {
	case !found:
		return "", &MissingDiscriminatorError{
			Field:  types.TypenameField,
			Reason: "field is absent",
		}
	case discriminator.Type != gjson.String:
		return "", &MissingDiscriminatorError{
			Field:  types.TypenameField,
			Reason: "value is not a string",
		}
	}
	return discriminator.Str, nil
}
