package graphql_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	graphql "github.com/llehouerou/go-graphql-variants"
)

type Node struct {
	ID graphql.ID `graphql:"id"`
}

// AuthorWithPosts selects an author and its polymorphic feed.
type AuthorWithPosts struct {
	Node
	Name     string
	Nickname *string                                                     `graphql:"nick: name"`
	Feed     []graphql.Polymorphic[allDataCapturePosition, PostOrAuthor] `graphql:"feed(first: 2)"`
	Internal string                                                      `graphql:"-"`
	Metadata map[string]any                                              `graphql:"metadata" scalar:"true"`
}

func TestNewStructFragment_selection(t *testing.T) {
	f, err := graphql.NewStructFragment[AuthorType, AuthorWithPosts]()
	if err != nil {
		t.Fatal(err)
	}
	want := `id
name
nick: name
feed(first: 2) {
  __typename
  ... on BlogPost {
    id
  }
  ... on Author {
    name
  }
}
metadata
`
	if got := f.Selection(); got != want {
		t.Errorf("got selection:\n%s\nwant:\n%s", got, want)
	}
	if got := f.SchemaType().GetGraphQLType(); got != "Author" {
		t.Errorf("got schema type: %s", got)
	}
}

func TestNewStructFragment_decode(t *testing.T) {
	f := graphql.StructFragment[AuthorType, AuthorWithPosts]()
	got, err := f.Decode([]byte(`{
		"__typename": "Author",
		"id": "a1",
		"name": "Ann",
		"nick": "annie",
		"feed": [
			{"__typename": "BlogPost", "id": "p1"},
			{"__typename": "Image", "id": "i1"},
			null
		],
		"metadata": {"likes": 3}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	nick := "annie"
	want := AuthorWithPosts{
		Node:     Node{ID: "a1"},
		Name:     "Ann",
		Nickname: &nick,
		Feed: []graphql.Polymorphic[allDataCapturePosition, PostOrAuthor]{
			{Value: PostVariant{Post{ID: id("p1")}}},
			{Value: OtherVariant{TypeName: "Image"}},
			{},
		},
		Metadata: map[string]any{"likes": float64(3)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStructFragment_nestedDecodeError(t *testing.T) {
	f := graphql.StructFragment[AuthorType, AuthorWithPosts]()
	_, err := f.Decode([]byte(`{"feed": [{"id": "p1"}]}`))
	if err == nil || !strings.Contains(err.Error(), "missing discriminator") {
		t.Errorf("got error: %v, want: missing discriminator", err)
	}
}

func TestNewStructFragment_errors(t *testing.T) {
	_, err := graphql.NewStructFragment[AuthorType, string]()
	if err == nil {
		t.Error("got error: nil, want: non-nil for a non struct type")
	}

	_, err = graphql.NewStructFragment[AuthorType, struct {
		Tags map[string]string
	}]()
	if err == nil || !strings.Contains(err.Error(), "on Author") {
		t.Errorf("got error: %v, want: map field error", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("got no panic")
		}
	}()
	graphql.StructFragment[AuthorType, int]()
}

func TestFieldsFragment(t *testing.T) {
	f := graphql.FieldsFragment[BlogPostType]("id", "headline: title", "author { name }")
	if got, want := f.Selection(), "id\nheadline: title\nauthor { name }"; got != want {
		t.Errorf("got selection: %q, want: %q", got, want)
	}

	got, err := f.Decode([]byte(`{"__typename":"BlogPost","id":"1","headline":"Hi","title":"ignored","author":{"name":"Ann"}}`))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]json.RawMessage{
		"id":       json.RawMessage(`"1"`),
		"headline": json.RawMessage(`"Hi"`),
		"author":   json.RawMessage(`{"name":"Ann"}`),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got: %s, want: %s", got, want)
	}

	_, err = f.Decode([]byte(`[]`))
	if err == nil {
		t.Error("got error: nil, want: non-nil")
	}
}

func TestPolymorphic(t *testing.T) {
	var v graphql.Polymorphic[allDataPosition, PostOrAuthor]
	if got, want := v.GraphQLSelection(), allData.Render(); got != want {
		t.Errorf("got selection:\n%s\nwant:\n%s", got, want)
	}

	err := json.Unmarshal([]byte(`{"__typename":"Author","name":"Ann"}`), &v)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(AuthorVariant{Author{Name: "Ann"}}, v.Value); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}

	err = json.Unmarshal([]byte(` null `), &v)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(AuthorVariant{Author{Name: "Ann"}}, v.Value); diff != "" {
		t.Errorf("null changed the value (-want +got):\n%s", diff)
	}

	err = json.Unmarshal([]byte(`{"name":"Ann"}`), &v)
	if err == nil {
		t.Error("got error: nil, want: missing discriminator")
	}
}
