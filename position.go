package graphql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/llehouerou/go-graphql-variants/types"
)

// Fragment is a unit that selects and decodes the fields of the schema
// type S into a T.
//
// SchemaType binds the fragment to S at compile time: a variant declared
// for S only accepts fragments built for S, so an alternative
// implementation can be substituted as long as it targets the same schema
// type.
type Fragment[S types.GraphQLType, T any] interface {
	SchemaType() S
	// Selection returns the fields to request, one per line, without the
	// surrounding braces.
	Selection() string
	// Decode decodes one response object. The object may carry fields
	// that are not part of the selection, such as __typename.
	Decode(data []byte) (T, error)
}

// SchemaMetadata lists the concrete types an abstract type can resolve
// to. It is consulted only while a position is constructed.
type SchemaMetadata interface {
	PossibleTypes(abstractType string) ([]string, error)
}

// PayloadKind tells how a decoded variant payload is stored in the
// union value.
type PayloadKind uint8

const (
	PayloadInline PayloadKind = iota
	PayloadIndirect
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadInline:
		return "inline"
	case PayloadIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("PayloadKind(%d)", uint8(k))
	}
}

// FallbackKind discriminates the fallback policies.
type FallbackKind uint8

const (
	// FallbackAbsent makes an unmatched discriminator a decode error.
	FallbackAbsent FallbackKind = iota
	// FallbackUnit produces a fixed marker value.
	FallbackUnit
	// FallbackCapturing produces a value carrying the unmatched
	// discriminator.
	FallbackCapturing
)

func (k FallbackKind) String() string {
	switch k {
	case FallbackAbsent:
		return "absent"
	case FallbackUnit:
		return "unit"
	case FallbackCapturing:
		return "capturing"
	default:
		return fmt.Sprintf("FallbackKind(%d)", uint8(k))
	}
}

// FallbackPolicy decides what an unmatched discriminator decodes to.
type FallbackPolicy[U any] struct {
	kind    FallbackKind
	marker  U
	capture func(typename string) U
}

// NoFallback returns the absent policy.
func NoFallback[U any]() FallbackPolicy[U] {
	return FallbackPolicy[U]{kind: FallbackAbsent}
}

// Unit returns a policy that decodes every unmatched object to marker.
func Unit[U any](marker U) FallbackPolicy[U] {
	return FallbackPolicy[U]{kind: FallbackUnit, marker: marker}
}

// Capture returns a policy that decodes an unmatched object to
// capture(typename).
func Capture[U any](capture func(typename string) U) FallbackPolicy[U] {
	if capture == nil {
		panic("graphql: Capture requires a non-nil function")
	}
	return FallbackPolicy[U]{kind: FallbackCapturing, capture: capture}
}

// Kind returns the policy discriminant.
func (f FallbackPolicy[U]) Kind() FallbackKind {
	return f.kind
}

// PossibleVariant is one concrete type a position may resolve to.
type PossibleVariant[U any] struct {
	typeName  string
	kind      PayloadKind
	selection func() string
	decode    func(data []byte) (U, error)
}

// On declares an inline variant: fragment decodes the fields of S and wrap
// turns the result into the union value.
func On[U any, S types.GraphQLType, T any](
	fragment Fragment[S, T],
	wrap func(T) U,
) PossibleVariant[U] {
	return PossibleVariant[U]{
		typeName:  types.TypeName[S](),
		kind:      PayloadInline,
		selection: fragment.Selection,
		decode: func(data []byte) (U, error) {
			v, err := fragment.Decode(data)
			if err != nil {
				var zero U
				return zero, err
			}
			return wrap(v), nil
		},
	}
}

// OnIndirect is like On but hands wrap a heap allocated payload, for
// recursive or large shapes.
func OnIndirect[U any, S types.GraphQLType, T any](
	fragment Fragment[S, T],
	wrap func(*T) U,
) PossibleVariant[U] {
	return PossibleVariant[U]{
		typeName:  types.TypeName[S](),
		kind:      PayloadIndirect,
		selection: fragment.Selection,
		decode: func(data []byte) (U, error) {
			v, err := fragment.Decode(data)
			if err != nil {
				var zero U
				return zero, err
			}
			return wrap(&v), nil
		},
	}
}

// OnTypeName declares an inline variant for a type known only at run
// time, such as one read from a declaration file. selection and decode
// play the role of the fragment.
func OnTypeName[U any](
	typeName string,
	selection string,
	decode func(data []byte) (U, error),
) PossibleVariant[U] {
	return PossibleVariant[U]{
		typeName:  typeName,
		kind:      PayloadInline,
		selection: func() string { return selection },
		decode:    decode,
	}
}

// TypeName returns the discriminator value identifying the variant.
func (v PossibleVariant[U]) TypeName() string {
	return v.typeName
}

// PayloadKind reports how the variant payload is stored.
func (v PossibleVariant[U]) PayloadKind() PayloadKind {
	return v.kind
}

// Position is a compiled polymorphic position: the ordered variants, the
// fallback policy and the exhaustive flag. It is immutable and safe for
// concurrent use.
type Position[U any] struct {
	variants   []PossibleVariant[U]
	fallback   FallbackPolicy[U]
	exhaustive bool
}

// PositionOption configures NewPosition.
type PositionOption func(*positionConfig)

type positionConfig struct {
	exhaustive           bool
	allowMissingFallback bool
	schema               SchemaMetadata
	abstractType         string
}

// Exhaustive declares that the variants cover every possible type of the
// abstract type. Combined with WithSchema it is checked against the schema.
func Exhaustive() PositionOption {
	return func(c *positionConfig) {
		c.exhaustive = true
	}
}

// AllowMissingFallback accepts NoFallback on an exhaustive position. An
// unmatched discriminator then fails with ErrUnhandledVariant.
func AllowMissingFallback() PositionOption {
	return func(c *positionConfig) {
		c.allowMissingFallback = true
	}
}

// WithSchema validates the declared type names against the possible types
// of abstractType.
func WithSchema(meta SchemaMetadata, abstractType string) PositionOption {
	return func(c *positionConfig) {
		c.schema = meta
		c.abstractType = abstractType
	}
}

// NewPosition compiles a polymorphic position. The variants keep their
// declaration order.
func NewPosition[U any](
	variants []PossibleVariant[U],
	fallback FallbackPolicy[U],
	options ...PositionOption,
) (*Position[U], error) {
	var cfg positionConfig
	for _, option := range options {
		option(&cfg)
	}

	seen := make(map[string]struct{}, len(variants))
	for i, v := range variants {
		if v.typeName == "" {
			return nil, fmt.Errorf("variant %d: %w", i, ErrEmptyTypeName)
		}
		if _, ok := seen[v.typeName]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, v.typeName)
		}
		seen[v.typeName] = struct{}{}
	}

	if fallback.kind == FallbackAbsent &&
		(!cfg.exhaustive || !cfg.allowMissingFallback) {
		return nil, ErrMissingFallback
	}

	if cfg.schema != nil {
		err := checkPossibleTypes(cfg, seen)
		if err != nil {
			return nil, err
		}
	}

	return &Position[U]{
		variants:   append([]PossibleVariant[U](nil), variants...),
		fallback:   fallback,
		exhaustive: cfg.exhaustive,
	}, nil
}

// MustPosition is like NewPosition but panics on error. It simplifies
// initialization of package level positions.
func MustPosition[U any](
	variants []PossibleVariant[U],
	fallback FallbackPolicy[U],
	options ...PositionOption,
) *Position[U] {
	p, err := NewPosition(variants, fallback, options...)
	if err != nil {
		panic("graphql: NewPosition: " + err.Error())
	}
	return p
}

func checkPossibleTypes(cfg positionConfig, declared map[string]struct{}) error {
	possible, err := cfg.schema.PossibleTypes(cfg.abstractType)
	if err != nil {
		return fmt.Errorf("failed to load possible types of %s: %w", cfg.abstractType, err)
	}
	known := make(map[string]struct{}, len(possible))
	for _, name := range possible {
		known[name] = struct{}{}
	}

	var unknown []string
	for name := range declared {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf(
			"%w %s: %s",
			ErrUnknownPossibleType,
			cfg.abstractType,
			strings.Join(unknown, ", "),
		)
	}

	if !cfg.exhaustive {
		return nil
	}
	var missing []string
	for _, name := range possible {
		if _, ok := declared[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf(
			"%w: %s is missing %s",
			ErrNotExhaustive,
			cfg.abstractType,
			strings.Join(missing, ", "),
		)
	}
	return nil
}

// Variants returns a copy of the declared variants.
func (p *Position[U]) Variants() []PossibleVariant[U] {
	return append([]PossibleVariant[U](nil), p.variants...)
}

// TypeNames returns the declared type names in declaration order.
func (p *Position[U]) TypeNames() []string {
	names := make([]string, len(p.variants))
	for i, v := range p.variants {
		names[i] = v.typeName
	}
	return names
}

// Fallback returns the fallback policy.
func (p *Position[U]) Fallback() FallbackPolicy[U] {
	return p.fallback
}

// IsExhaustive reports whether the position was declared exhaustive.
func (p *Position[U]) IsExhaustive() bool {
	return p.exhaustive
}
