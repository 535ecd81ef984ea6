package graphql

import "bytes"

// SelectionRenderer is implemented by field types that render their own
// sub-selection.
type SelectionRenderer interface {
	GraphQLSelection() string
}

// PositionProvider names a position through a type, so the position can
// be reached from a type parameter. Implementations are usually empty
// structs returning a package level *Position.
type PositionProvider[U any] interface {
	Position() *Position[U]
}

// Polymorphic holds a union value decoded through the position of P. It
// is meant to be used as a field of query structs and struct fragments:
//
//	type postOrAuthorPosition struct{}
//
//	func (postOrAuthorPosition) Position() *graphql.Position[PostOrAuthor] {
//		return postOrAuthor
//	}
//
//	var q struct {
//		AllData []graphql.Polymorphic[postOrAuthorPosition, PostOrAuthor]
//	}
type Polymorphic[P PositionProvider[U], U any] struct {
	Value U
}

// GraphQLSelection renders the position of P.
func (Polymorphic[P, U]) GraphQLSelection() string {
	var p P
	return p.Position().Render()
}

// UnmarshalJSON decodes data through the position of P. null leaves the
// value untouched.
func (v *Polymorphic[P, U]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var p P
	out, err := p.Position().Decode(data)
	if err != nil {
		return err
	}
	v.Value = out
	return nil
}
