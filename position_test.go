package graphql_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	graphql "github.com/llehouerou/go-graphql-variants"
)

type unnamedType struct{}

func (unnamedType) GetGraphQLType() string { return "" }

// staticSchema maps abstract types to their possible types.
type staticSchema map[string][]string

func (s staticSchema) PossibleTypes(abstractType string) ([]string, error) {
	names, ok := s[abstractType]
	if !ok {
		return nil, fmt.Errorf("unknown type %s", abstractType)
	}
	return names, nil
}

var blogSchema = staticSchema{
	"PostOrAuthor": {"Author", "BlogPost", "Image"},
	"SearchResult": {"Author", "BlogPost"},
}

func TestNewPosition(t *testing.T) {
	post := graphql.On(postFragment, wrapPost)
	author := graphql.On(authorFragment, wrapAuthor)
	unit := graphql.Unit[PostOrAuthor](UnknownVariant{})
	none := graphql.NoFallback[PostOrAuthor]()

	tests := []struct {
		name     string
		variants []graphql.PossibleVariant[PostOrAuthor]
		fallback graphql.FallbackPolicy[PostOrAuthor]
		options  []graphql.PositionOption
		wantErr  error
	}{
		{
			name:     "unit fallback",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author},
			fallback: unit,
		},
		{
			name:     "no variants",
			fallback: unit,
		},
		{
			name: "empty type name",
			variants: []graphql.PossibleVariant[PostOrAuthor]{
				post,
				graphql.On(graphql.StructFragment[unnamedType, Author](), wrapAuthor),
			},
			fallback: unit,
			wantErr:  graphql.ErrEmptyTypeName,
		},
		{
			name:     "duplicate type name",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author, post},
			fallback: unit,
			wantErr:  graphql.ErrDuplicateVariant,
		},
		{
			name:     "no fallback",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author},
			fallback: none,
			wantErr:  graphql.ErrMissingFallback,
		},
		{
			name:     "exhaustive without fallback",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author},
			fallback: none,
			options:  []graphql.PositionOption{graphql.Exhaustive()},
			wantErr:  graphql.ErrMissingFallback,
		},
		{
			name:     "exhaustive with missing fallback allowed",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author},
			fallback: none,
			options:  []graphql.PositionOption{graphql.Exhaustive(), graphql.AllowMissingFallback()},
		},
		{
			name:     "missing fallback allowed but not exhaustive",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author},
			fallback: none,
			options:  []graphql.PositionOption{graphql.AllowMissingFallback()},
			wantErr:  graphql.ErrMissingFallback,
		},
		{
			name:     "schema subset",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post},
			fallback: unit,
			options:  []graphql.PositionOption{graphql.WithSchema(blogSchema, "PostOrAuthor")},
		},
		{
			name:     "schema exhaustive",
			variants: []graphql.PossibleVariant[PostOrAuthor]{author, post},
			fallback: unit,
			options: []graphql.PositionOption{
				graphql.WithSchema(blogSchema, "SearchResult"),
				graphql.Exhaustive(),
			},
		},
		{
			name:     "schema not exhaustive",
			variants: []graphql.PossibleVariant[PostOrAuthor]{post, author},
			fallback: unit,
			options: []graphql.PositionOption{
				graphql.WithSchema(blogSchema, "PostOrAuthor"),
				graphql.Exhaustive(),
			},
			wantErr: graphql.ErrNotExhaustive,
		},
		{
			name: "schema unknown type",
			variants: []graphql.PossibleVariant[PostOrAuthor]{
				post,
				graphql.On(graphql.FieldsFragment[ImageType]("url"), func(map[string]json.RawMessage) PostOrAuthor {
					return UnknownVariant{}
				}),
			},
			fallback: unit,
			options:  []graphql.PositionOption{graphql.WithSchema(blogSchema, "SearchResult")},
			wantErr:  graphql.ErrUnknownPossibleType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := graphql.NewPosition(tt.variants, tt.fallback, tt.options...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error: %v, want: %v", err, tt.wantErr)
				}
				if p != nil {
					t.Errorf("got position on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("got error: %v", err)
			}
			if got, want := len(p.Variants()), len(tt.variants); got != want {
				t.Errorf("got %d variants, want %d", got, want)
			}
		})
	}
}

func TestNewPosition_schemaErrors(t *testing.T) {
	_, err := graphql.NewPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{graphql.On(postFragment, wrapPost)},
		graphql.Unit[PostOrAuthor](UnknownVariant{}),
		graphql.WithSchema(blogSchema, "Comment"),
	)
	if err == nil || !strings.Contains(err.Error(), "unknown type Comment") {
		t.Errorf("got error: %v, want: unknown type Comment", err)
	}

	_, err = graphql.NewPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{graphql.On(postFragment, wrapPost)},
		graphql.Unit[PostOrAuthor](UnknownVariant{}),
		graphql.WithSchema(blogSchema, "PostOrAuthor"),
		graphql.Exhaustive(),
	)
	if got, want := err.Error(), "exhaustive position does not declare every possible type: PostOrAuthor is missing Author, Image"; got != want {
		t.Errorf("got error: %q, want: %q", got, want)
	}
}

func TestMustPosition_panics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("got no panic")
		}
		if msg, _ := r.(string); !strings.HasPrefix(msg, "graphql: NewPosition: ") {
			t.Errorf("got panic: %v", r)
		}
	}()
	graphql.MustPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{graphql.On(postFragment, wrapPost)},
		graphql.NoFallback[PostOrAuthor](),
	)
}

func TestPosition_accessors(t *testing.T) {
	if got, want := allDataRef.TypeNames(), []string{"BlogPost", "Author"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got type names: %v, want: %v", got, want)
	}

	variants := allDataRef.Variants()
	if got, want := variants[0].PayloadKind(), graphql.PayloadIndirect; got != want {
		t.Errorf("got payload kind: %v, want: %v", got, want)
	}
	if got, want := variants[1].PayloadKind().String(), "inline"; got != want {
		t.Errorf("got payload kind: %v, want: %v", got, want)
	}

	variants[0] = variants[1]
	if got := allDataRef.TypeNames()[0]; got != "BlogPost" {
		t.Errorf("position was modified through Variants: %v", got)
	}

	if got, want := allData.Fallback().Kind(), graphql.FallbackUnit; got != want {
		t.Errorf("got fallback: %v, want: %v", got, want)
	}
	if got, want := allDataCapture.Fallback().Kind().String(), "capturing"; got != want {
		t.Errorf("got fallback: %v, want: %v", got, want)
	}
	if allData.IsExhaustive() {
		t.Error("got exhaustive position")
	}
}

func TestCapture_nil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("got no panic")
		}
	}()
	graphql.Capture[PostOrAuthor](nil)
}

// upperAuthorFragment is an alternative fragment for the Author type.
type upperAuthorFragment struct{}

func (upperAuthorFragment) SchemaType() AuthorType { return AuthorType{} }

func (upperAuthorFragment) Selection() string { return "name" }

func (upperAuthorFragment) Decode(data []byte) (Author, error) {
	var in struct {
		Name string `json:"name"`
	}
	err := json.Unmarshal(data, &in)
	if err != nil {
		return Author{}, err
	}
	return Author{Name: strings.ToUpper(in.Name)}, nil
}

func TestOn_substitutesFragment(t *testing.T) {
	var fragment graphql.Fragment[AuthorType, Author] = upperAuthorFragment{}
	p := graphql.MustPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{
			graphql.On(postFragment, wrapPost),
			graphql.On(fragment, wrapAuthor),
		},
		graphql.Unit[PostOrAuthor](UnknownVariant{}),
	)

	if got, want := p.Render(), allData.Render(); got != want {
		t.Errorf("got render:\n%s\nwant:\n%s", got, want)
	}

	got, err := p.Decode([]byte(`{"__typename":"Author","name":"ann"}`))
	if err != nil {
		t.Fatal(err)
	}
	if want := (AuthorVariant{Author{Name: "ANN"}}); !reflect.DeepEqual(got, want) {
		t.Errorf("got: %#v, want: %#v", got, want)
	}
}

func TestOnTypeName(t *testing.T) {
	p := graphql.MustPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{
			graphql.On(postFragment, wrapPost),
			graphql.OnTypeName("Image", "url", func(data []byte) (PostOrAuthor, error) {
				var in struct {
					URL string `json:"url"`
				}
				err := json.Unmarshal(data, &in)
				if err != nil {
					return nil, err
				}
				return OtherVariant{TypeName: in.URL}, nil
			}),
		},
		graphql.Unit[PostOrAuthor](UnknownVariant{}),
		graphql.WithSchema(blogSchema, "PostOrAuthor"),
	)

	if got, want := p.TypeNames(), []string{"BlogPost", "Image"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got type names: %v, want: %v", got, want)
	}
	if !strings.Contains(p.Render(), "... on Image {\n  url\n}") {
		t.Errorf("got render:\n%s", p.Render())
	}

	got, err := p.Decode([]byte(`{"__typename":"Image","url":"a.png"}`))
	if err != nil {
		t.Fatal(err)
	}
	if want := (OtherVariant{TypeName: "a.png"}); !reflect.DeepEqual(got, want) {
		t.Errorf("got: %#v, want: %#v", got, want)
	}
}
