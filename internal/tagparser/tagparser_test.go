package tagparser

import (
	"testing"
)

func TestParseGraphQLTag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want ParsedTag
	}{
		{
			name: "simple field name",
			tag:  "name",
			want: ParsedTag{FieldName: "name"},
		},
		{
			name: "field with arguments",
			tag:  "height(unit: METER)",
			want: ParsedTag{FieldName: "height", Arguments: "unit: METER"},
		},
		{
			name: "alias",
			tag:  "node1: node",
			want: ParsedTag{FieldName: "node", Alias: "node1"},
		},
		{
			name: "alias with arguments",
			tag:  `node1: node(id: "MDEyOklzc3VlQ29tbWVudDE2OTQwNzk0Ng==")`,
			want: ParsedTag{
				FieldName: "node",
				Alias:     "node1",
				Arguments: `id: "MDEyOklzc3VlQ29tbWVudDE2OTQwNzk0Ng=="`,
			},
		},
		{
			name: "alias without spaces",
			tag:  "shortDisplayName:displayName(short:true)",
			want: ParsedTag{FieldName: "displayName", Alias: "shortDisplayName", Arguments: "short:true"},
		},
		{
			name: "fragment",
			tag:  "... on Droid",
			want: ParsedTag{IsFragment: true, TypeName: "Droid"},
		},
		{
			name: "fragment with extra whitespace",
			tag:  "  ...   on   Droid  ",
			want: ParsedTag{IsFragment: true, TypeName: "Droid"},
		},
		{
			name: "fragment without typename",
			tag:  "...",
			want: ParsedTag{IsFragment: true},
		},
		{
			name: "skip field",
			tag:  "-",
			want: ParsedTag{FieldName: "-"},
		},
		{
			name: "empty",
			tag:  "",
			want: ParsedTag{},
		},
		{
			name: "variable in arguments",
			tag:  "human(id: $id)",
			want: ParsedTag{FieldName: "human", Arguments: "id: $id"},
		},
		{
			name: "nested parentheses",
			tag:  "field(arg: func(nested))",
			want: ParsedTag{FieldName: "field", Arguments: "arg: func(nested)"},
		},
		{
			name: "parenthesis inside string literal",
			tag:  `search(text: "a ) b")`,
			want: ParsedTag{FieldName: "search", Arguments: `text: "a ) b"`},
		},
		{
			name: "empty arguments",
			tag:  "field()",
			want: ParsedTag{FieldName: "field"},
		},
		{
			name: "directive",
			tag:  "name @include(if: $full)",
			want: ParsedTag{FieldName: "name"},
		},
		{
			name: "arguments and directive",
			tag:  "posts: feed(first: 2) @skip(if: $short)",
			want: ParsedTag{FieldName: "feed", Alias: "posts", Arguments: "first: 2"},
		},
		{
			name: "sub-selection",
			tag:  "author { name }",
			want: ParsedTag{FieldName: "author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGraphQLTag(tt.tag)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseGraphQLTag(%q) = %+v, want %+v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParseGraphQLTag_UnbalancedParentheses(t *testing.T) {
	for _, tag := range []string{"field(arg: value", `field(arg: "x)"`} {
		if _, err := ParseGraphQLTag(tag); err == nil {
			t.Errorf("ParseGraphQLTag(%q): expected an error", tag)
		}
	}
}

func TestParsedTag_ResponseKey(t *testing.T) {
	tests := map[string]string{
		"name":                 "name",
		"node1: node(id: $id)": "node1",
		"node(id: $id)":        "node",
	}
	for tag, want := range tests {
		parsed, err := ParseGraphQLTag(tag)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := parsed.ResponseKey(); got != want {
			t.Errorf("ResponseKey(%q) = %q, want %q", tag, got, want)
		}
	}
}
