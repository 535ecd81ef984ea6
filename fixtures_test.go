package graphql_test

import (
	"io"
	"net/http"
	"net/http/httptest"

	graphql "github.com/llehouerou/go-graphql-variants"
)

// Schema types.

type BlogPostType struct{}

func (BlogPostType) GetGraphQLType() string { return "BlogPost" }

type AuthorType struct{}

func (AuthorType) GetGraphQLType() string { return "Author" }

type ImageType struct{}

func (ImageType) GetGraphQLType() string { return "Image" }

// Decoded shapes.

type Post struct {
	ID *graphql.ID `graphql:"id"`
}

type Author struct {
	Name string `graphql:"name"`
}

// PostOrAuthor is the union decoded at the allData position.
type PostOrAuthor interface {
	isPostOrAuthor()
}

type PostVariant struct{ Post Post }

type PostRefVariant struct{ Post *Post }

type AuthorVariant struct{ Author Author }

type UnknownVariant struct{}

type OtherVariant struct{ TypeName string }

func (PostVariant) isPostOrAuthor()    {}
func (PostRefVariant) isPostOrAuthor() {}
func (AuthorVariant) isPostOrAuthor()  {}
func (UnknownVariant) isPostOrAuthor() {}
func (OtherVariant) isPostOrAuthor()   {}

var (
	postFragment   = graphql.StructFragment[BlogPostType, Post]()
	authorFragment = graphql.StructFragment[AuthorType, Author]()

	wrapPost   = func(p Post) PostOrAuthor { return PostVariant{p} }
	wrapAuthor = func(a Author) PostOrAuthor { return AuthorVariant{a} }

	// allData renders and decodes PostOrAuthor with a unit fallback.
	allData = graphql.MustPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{
			graphql.On(postFragment, wrapPost),
			graphql.On(authorFragment, wrapAuthor),
		},
		graphql.Unit[PostOrAuthor](UnknownVariant{}),
	)

	// allDataCapture keeps unknown type names.
	allDataCapture = graphql.MustPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{
			graphql.On(postFragment, wrapPost),
			graphql.On(authorFragment, wrapAuthor),
		},
		graphql.Capture(func(typename string) PostOrAuthor {
			return OtherVariant{TypeName: typename}
		}),
	)

	// allDataRef stores posts behind a pointer.
	allDataRef = graphql.MustPosition(
		[]graphql.PossibleVariant[PostOrAuthor]{
			graphql.OnIndirect(postFragment, func(p *Post) PostOrAuthor {
				return PostRefVariant{p}
			}),
			graphql.On(authorFragment, wrapAuthor),
		},
		graphql.Unit[PostOrAuthor](UnknownVariant{}),
	)
)

type allDataPosition struct{}

func (allDataPosition) Position() *graphql.Position[PostOrAuthor] { return allData }

type allDataCapturePosition struct{}

func (allDataCapturePosition) Position() *graphql.Position[PostOrAuthor] {
	return allDataCapture
}

// AllPostsQuery is the query document embedding the allData position.
type AllPostsQuery struct {
	AllData []graphql.Polymorphic[allDataPosition, PostOrAuthor] `graphql:"allData"`
}

func id(s string) *graphql.ID {
	v := graphql.ID(s)
	return &v
}

// localRoundTripper is an http.RoundTripper that executes HTTP transactions
// by using handler directly, instead of going over an HTTP connection.
type localRoundTripper struct {
	handler http.Handler
}

func (l localRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	w := httptest.NewRecorder()
	l.handler.ServeHTTP(w, req)
	return w.Result(), nil
}

func mustRead(r io.Reader) string {
	b, err := io.ReadAll(r)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustWrite(w io.Writer, s string) {
	_, err := io.WriteString(w, s)
	if err != nil {
		panic(err)
	}
}
