// Package tagparser parses the value of graphql struct tags.
package tagparser

import (
	"fmt"
	"strings"
)

// ParsedTag represents a parsed GraphQL struct tag.
type ParsedTag struct {
	// FieldName is the GraphQL field name (after alias if present).
	FieldName string
	// Arguments contains the content inside parentheses, if any.
	Arguments string
	// Alias is the field alias (before the colon), if any.
	Alias string
	// IsFragment indicates whether this is a GraphQL fragment ("...").
	IsFragment bool
	// TypeName is the typename for fragments ("... on TypeName").
	TypeName string
}

// ResponseKey returns the key the field has in a response object: the
// alias if any, the field name otherwise.
func (p ParsedTag) ResponseKey() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.FieldName
}

// ParseGraphQLTag parses a GraphQL struct tag value and returns structured information.
// Examples:
//   - "name" -> {FieldName: "name"}
//   - "height(unit: METER)" -> {FieldName: "height", Arguments: "unit: METER"}
//   - "node1: node(id: $id)" -> {FieldName: "node", Alias: "node1", Arguments: "id: $id"}
//   - "author @include(if: $full) { name }" -> {FieldName: "author"}
//   - "... on Droid" -> {IsFragment: true, TypeName: "Droid"}
//
// Unbalanced parentheses outside string literals are an error.
func ParseGraphQLTag(tag string) (ParsedTag, error) {
	tag = strings.TrimSpace(tag)

	var parsed ParsedTag

	switch {
	case tag == "":
		return parsed, nil
	case tag == "-":
		parsed.FieldName = "-"
		return parsed, nil
	case strings.HasPrefix(tag, "..."):
		parsed.IsFragment = true
		remaining := strings.TrimSpace(tag[3:])
		if rest, ok := strings.CutPrefix(remaining, "on "); ok {
			parsed.TypeName = strings.TrimSpace(rest)
		}
		return parsed, nil
	}

	// Directives and sub-selections follow the field.
	parenIdx := strings.Index(tag, "(")
	if end := strings.IndexAny(tag, "@{"); end != -1 && (parenIdx == -1 || end < parenIdx) {
		tag = strings.TrimSpace(tag[:end])
		parenIdx = -1
	}

	fieldPart := tag
	if parenIdx != -1 {
		closeIdx, err := matchingParen(tag, parenIdx)
		if err != nil {
			return ParsedTag{}, fmt.Errorf("invalid graphql tag %q: %w", tag, err)
		}
		parsed.Arguments = tag[parenIdx+1 : closeIdx]
		fieldPart = strings.TrimSpace(tag[:parenIdx])
	}

	if alias, name, ok := strings.Cut(fieldPart, ":"); ok {
		parsed.Alias = strings.TrimSpace(alias)
		parsed.FieldName = strings.TrimSpace(name)
	} else {
		parsed.FieldName = strings.TrimSpace(fieldPart)
	}

	return parsed, nil
}

// matchingParen returns the index of the parenthesis closing the one at
// open, skipping string literals.
func matchingParen(s string, open int) (int, error) {
	depth := 0
	inString := false
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses")
}
