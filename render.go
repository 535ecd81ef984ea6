package graphql

import (
	"io"
	"strings"

	"github.com/llehouerou/go-graphql-variants/types"
)

// Render returns the selection to embed at the position:
//
//	__typename
//	... on BlogPost {
//	  id
//	}
//
// The discriminator comes first, then one inline fragment per variant in
// declaration order. Rendering the same position always yields the same
// text.
func (p *Position[U]) Render() string {
	var b strings.Builder
	_ = p.RenderTo(&b, 0)
	return b.String()
}

// GraphQLSelection implements SelectionRenderer.
func (p *Position[U]) GraphQLSelection() string {
	return p.Render()
}

// RenderTo writes the selection to w, indented by depth levels.
func (p *Position[U]) RenderTo(w io.Writer, depth int) error {
	sw := newSelectionWriter(w, depth)
	sw.line(types.TypenameField)
	for _, v := range p.variants {
		sw.open(types.FragmentOnPrefix + v.typeName)
		selection := v.selection()
		if strings.TrimSpace(selection) == "" {
			// An inline fragment needs at least one field.
			sw.line(types.TypenameField)
		} else {
			sw.block(selection)
		}
		sw.close()
	}
	return sw.err
}
