package graphql

import (
	"errors"
	"fmt"
)

// Construction errors, returned by NewPosition.
var (
	ErrEmptyTypeName       = errors.New("variant has an empty type name")
	ErrDuplicateVariant    = errors.New("duplicate variant type name")
	ErrMissingFallback     = errors.New("position has no fallback")
	ErrUnknownPossibleType = errors.New("type is not a possible type of the abstract type")
	ErrNotExhaustive       = errors.New("exhaustive position does not declare every possible type")
)

// Decode errors. Both indicate that a response object does not match the
// declared shape and are never recovered from by falling back.
var (
	ErrMissingDiscriminator = errors.New("missing discriminator")
	ErrUnhandledVariant     = errors.New("unhandled variant")
)

// ErrInvalidJSON is returned when the input to Decode is not a single
// valid JSON value.
var ErrInvalidJSON = errors.New("invalid JSON")

// ErrNullValue is returned by QueryPosition when the queried field is
// null.
var ErrNullValue = errors.New("field value is null")

// MissingDiscriminatorError is returned when a response value is not an
// object or does not carry a string discriminator field.
type MissingDiscriminatorError struct {
	Field  string
	Reason string
}

func (e *MissingDiscriminatorError) Error() string {
	return fmt.Sprintf("missing discriminator %q: %s", e.Field, e.Reason)
}

func (e *MissingDiscriminatorError) Is(target error) bool {
	return target == ErrMissingDiscriminator
}

// UnhandledVariantError is returned when a position without a fallback
// receives a discriminator matching none of its variants.
type UnhandledVariantError struct {
	TypeName string
}

func (e *UnhandledVariantError) Error() string {
	return fmt.Sprintf("unhandled variant %q", e.TypeName)
}

func (e *UnhandledVariantError) Is(target error) bool {
	return target == ErrUnhandledVariant
}

// VariantError wraps an error raised by the fragment decoder of the
// matched variant.
type VariantError struct {
	TypeName string
	Err      error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("failed to decode variant %q: %v", e.TypeName, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}
