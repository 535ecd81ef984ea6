package graphql

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jensneuse/abstractlogger"

	"github.com/llehouerou/go-graphql-variants/internal/tagparser"
	"github.com/llehouerou/go-graphql-variants/pkg/jsonutil"
)

// RequestIDHeader carries the correlation id of every request sent by a
// Client.
const RequestIDHeader = "X-Request-Id"

// RequestModifier allows you to tweak the HTTP request, e.g. to set
// authentication headers.
type RequestModifier func(*http.Request)

// Client is a GraphQL client.
//
// The With* methods return a new Client and leave the receiver untouched,
// so always use the returned value:
//
//	client = client.WithDebug(true).WithRequestModifier(modifier)
type Client struct {
	url             string // GraphQL server URL.
	httpClient      *http.Client
	requestModifier RequestModifier
	debug           bool
	logger          abstractlogger.Logger
}

// NewClient creates a GraphQL client targeting the specified GraphQL server URL.
// If httpClient is nil, then http.DefaultClient is used.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		logger:     abstractlogger.NoopLogger,
	}
}

// Query executes a single GraphQL query request,
// with a query derived from q, populating the response into it.
// q should be a pointer to struct that corresponds to the GraphQL schema.
func (c *Client) Query(
	ctx context.Context,
	q any,
	variables any,
	options ...Option,
) error {
	query, err := ConstructQuery(q, variables, options...)
	if err != nil {
		return newSimpleErrors(ErrGraphQLEncode, err)
	}
	return c.Exec(ctx, query, q, variables)
}

// Mutate executes a single GraphQL mutation request,
// with a mutation derived from m, populating the response into it.
// m should be a pointer to struct that corresponds to the GraphQL schema.
func (c *Client) Mutate(
	ctx context.Context,
	m any,
	variables any,
	options ...Option,
) error {
	mutation, err := ConstructMutation(m, variables, options...)
	if err != nil {
		return newSimpleErrors(ErrGraphQLEncode, err)
	}
	return c.Exec(ctx, mutation, m, variables)
}

// Exec executes a pre-built query and unmarshals the response data into v.
// Unlike Query the selected fields are not inferred from v.
func (c *Client) Exec(
	ctx context.Context,
	query string,
	v any,
	variables any,
) error {
	data, errs := c.request(ctx, query, variables)
	if len(data) > 0 {
		err := jsonutil.UnmarshalGraphQL(data, v)
		if err != nil {
			errs = append(errs, wrapError(ErrGraphQLDecode, err))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExecRaw executes a pre-built query and returns the raw "data" member of
// the response.
func (c *Client) ExecRaw(
	ctx context.Context,
	query string,
	variables any,
) ([]byte, error) {
	data, errs := c.request(ctx, query, variables)
	if len(errs) > 0 {
		return data, errs
	}
	return data, nil
}

// QueryPosition queries the single root field through position and
// decodes its value. field may carry an alias and arguments. Errors
// reported by the server come back as Errors; decode errors keep the
// position errors reachable with errors.Is. A null field value returns
// ErrNullValue.
func QueryPosition[U any](
	ctx context.Context,
	c *Client,
	field string,
	position *Position[U],
	variables any,
	options ...Option,
) (U, error) {
	var zero U

	parsed, err := tagparser.ParseGraphQLTag(field)
	if err != nil {
		return zero, newSimpleErrors(ErrGraphQLEncode, err)
	}
	if parsed.IsFragment {
		return zero, newSimpleErrors(ErrGraphQLEncode, fmt.Errorf("%q is not a field", field))
	}

	query, err := ConstructPositionQuery(field, position, variables, options...)
	if err != nil {
		return zero, newSimpleErrors(ErrGraphQLEncode, err)
	}

	data, err := c.ExecRaw(ctx, query, variables)
	if err != nil {
		return zero, err
	}

	var root map[string]json.RawMessage
	err = json.Unmarshal(data, &root)
	if err != nil {
		return zero, newSimpleErrors(ErrJsonDecode, err)
	}
	raw, ok := root[parsed.ResponseKey()]
	if !ok {
		return zero, newSimpleErrors(
			ErrGraphQLDecode,
			fmt.Errorf("response has no field %q", parsed.ResponseKey()),
		)
	}
	if isNull(raw) {
		return zero, ErrNullValue
	}
	out, err := position.Decode(raw)
	if err != nil {
		return zero, Errors{wrapError(ErrGraphQLDecode, err)}
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// request sends the operation and returns the "data" member of the
// response together with the GraphQL errors it carries.
func (c *Client) request(
	ctx context.Context,
	query string,
	variables any,
) ([]byte, Errors) {
	requestID := uuid.NewString()
	log := c.logger

	req, reqBody, err := c.buildRequest(ctx, query, variables)
	if err != nil {
		return nil, newSimpleErrors(ErrJsonEncode, err)
	}
	req.Header.Set(RequestIDHeader, requestID)

	if c.debug {
		log.Debug("graphql request",
			abstractlogger.String("request_id", requestID),
			abstractlogger.String("url", c.url),
			abstractlogger.ByteString("body", reqBody),
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("graphql request failed",
			abstractlogger.String("request_id", requestID),
			abstractlogger.Error(err),
		)
		return nil, Errors{c.decorate(wrapError(ErrRequestError, err), requestID)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("%v; body: %q", resp.Status, body)
		log.Error("graphql request failed",
			abstractlogger.String("request_id", requestID),
			abstractlogger.Int("status", resp.StatusCode),
		)
		return nil, Errors{c.decorate(wrapError(ErrRequestError, err), requestID)}
	}

	r, err := handleGzipResponse(resp)
	if err != nil {
		return nil, Errors{c.decorate(wrapError(ErrJsonDecode, err), requestID)}
	}
	defer func() { _ = r.Close() }()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, Errors{c.decorate(wrapError(ErrJsonDecode, err), requestID)}
	}
	if c.debug {
		log.Debug("graphql response",
			abstractlogger.String("request_id", requestID),
			abstractlogger.ByteString("body", body),
		)
	}

	data, errs := decodeResponse(body)
	for i := range errs {
		errs[i] = c.decorate(errs[i], requestID)
	}
	return data, errs
}

func (c *Client) buildRequest(
	ctx context.Context,
	query string,
	variables any,
) (*http.Request, []byte, error) {
	// Normalize empty variable maps to nil
	if !hasVariables(variables) {
		variables = nil
	}
	in := struct {
		Query     string `json:"query"`
		Variables any    `json:"variables,omitempty"`
	}{
		Query:     query,
		Variables: variables,
	}
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(in)
	if err != nil {
		return nil, nil, err
	}

	reqBody := buf.Bytes()
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, reqBody, err
	}
	req.Header.Add("Content-Type", "application/json")

	if c.requestModifier != nil {
		c.requestModifier(req)
	}
	return req, reqBody, nil
}

// handleGzipResponse wraps the response body with a gzip reader if the
// Content-Encoding header asks for it.
func handleGzipResponse(resp *http.Response) (io.ReadCloser, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		return gr, nil
	}
	return io.NopCloser(resp.Body), nil
}

func decodeResponse(body []byte) ([]byte, Errors) {
	var out struct {
		Data   *json.RawMessage
		Errors Errors
	}
	err := json.Unmarshal(body, &out)
	if err != nil {
		return nil, newSimpleErrors(ErrJsonDecode, err)
	}

	var data []byte
	if out.Data != nil && len(*out.Data) > 0 && string(*out.Data) != "null" {
		data = *out.Data
	}
	if len(out.Errors) > 0 {
		return data, out.Errors
	}
	return data, nil
}

// decorate adds the request id to the error extensions in debug mode.
func (c *Client) decorate(e Error, requestID string) Error {
	if !c.debug {
		return e
	}
	if e.Extensions == nil {
		e.Extensions = make(map[string]any)
	}
	e.Extensions["request_id"] = requestID
	return e
}

// clone creates a copy of the Client with all fields preserved.
func (c *Client) clone() *Client {
	return &Client{
		url:             c.url,
		httpClient:      c.httpClient,
		requestModifier: c.requestModifier,
		debug:           c.debug,
		logger:          c.logger,
	}
}

// WithRequestModifier returns a new Client with the request modifier set.
// This allows you to reuse the same TCP connection for multiple slightly
// different requests to the same server (e.g., different authentication
// headers for multitenant applications).
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithDebug returns a new Client with debug mode enabled or disabled.
// In debug mode request and response bodies are logged at debug level and
// errors carry the request id in their extensions.
func (c *Client) WithDebug(debug bool) *Client {
	clone := c.clone()
	clone.debug = debug
	return clone
}

// WithLogger returns a new Client logging to logger. A nil logger
// disables logging.
func (c *Client) WithLogger(logger abstractlogger.Logger) *Client {
	clone := c.clone()
	if logger == nil {
		logger = abstractlogger.NoopLogger
	}
	clone.logger = logger
	return clone
}

// Errors represents the "errors" array in a response from a GraphQL server.
// If returned via error interface, the slice is expected to contain at least 1 element.
//
// Specification: https://spec.graphql.org/October2021/#sec-Errors.
type Errors []Error

// Error is a single GraphQL error, either reported by the server or
// raised by the client with a code from the Err* constants.
type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
	Locations  []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations"`
	Path []any `json:"path"`

	err error
}

// Error implements error interface.
func (e Error) Error() string {
	return fmt.Sprintf("Message: %s, Locations: %+v", e.Message, e.Locations)
}

// Unwrap returns the client side cause of the error, if any.
func (e Error) Unwrap() error {
	return e.err
}

// GetCode returns the error code from the extensions, or an empty string if
// not present.
func (e Error) GetCode() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Error implements error interface.
func (e Errors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Unwrap exposes every error so errors.Is and errors.As see through the
// slice.
func (e Errors) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

// wrapError creates a new Error with the given code around err.
func wrapError(code string, err error) Error {
	return Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code": code,
		},
		err: err,
	}
}

func newSimpleErrors(code string, err error) Errors {
	return Errors{wrapError(code, err)}
}

// UnmarshalGraphQL parses the JSON-encoded GraphQL response data and stores
// the result in the GraphQL query data structure pointed to by v.
func UnmarshalGraphQL(data []byte, v any) error {
	return jsonutil.UnmarshalGraphQL(data, v)
}

// Client side error codes, stored under the "code" extension.
const (
	ErrRequestError  = "request_error"
	ErrJsonEncode    = "json_encode_error"
	ErrJsonDecode    = "json_decode_error"
	ErrGraphQLEncode = "graphql_encode_error"
	ErrGraphQLDecode = "graphql_decode_error"
)
