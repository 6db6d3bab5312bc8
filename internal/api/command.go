package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// DefaultItemsPerPage is the page size list commands ask for unless told otherwise.
	DefaultItemsPerPage = 10
	// SuggestionItemsPerPage is the page size for typeahead style commands.
	SuggestionItemsPerPage = 3
)

// PagingDefaults seeds startindex/itemsperpage when a command leaves them unset.
type PagingDefaults struct {
	StartIndex   int
	ItemsPerPage int
}

// Descriptor is the static half of a command: how its request is shaped.
type Descriptor struct {
	Method                   string // defaults to GET
	Secured                  bool   // secure base URL plus a user bearer token
	SecureBaseURL            bool   // secure base URL without a bearer token (token endpoints)
	RequiresCountryCode      bool
	UseBlankTerritory        bool
	RequiresEmptyQuerystring bool
	Domain                   string
	ContentType              string
	Paging                   PagingDefaults
}

func (d Descriptor) method() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return d.Method
}

// Command is one API operation: it shapes the request and decodes the success payload into T.
//
// AppendPath and BuildQuery run at execute time and are where argument validation happens.
type Command[T any] interface {
	Descriptor() Descriptor
	AppendPath(b *strings.Builder) error
	BuildQuery(q *Query) error
	EncodeBody() ([]byte, error)
	Decode(body []byte) (T, error)
}

// Authorizer hands secured commands a bearer token, refreshing it first when needed.
type Authorizer interface {
	Authorize(ctx context.Context) (string, error)
}

// SettingsSource returns the current settings snapshot.
type SettingsSource func() ClientSettings

type requestIDKey struct{}

// WithRequestID attaches a caller-chosen correlation id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the correlation id stored by [WithRequestID].
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// Pipeline runs commands: URI, headers, dispatch, decode, classify.
type Pipeline struct {
	settings   SettingsSource
	dispatcher Dispatcher
	authorizer Authorizer
	logger     *log.Logger
	newID      func() string
}

// PipelineOption configures a [Pipeline].
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *log.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithAuthorizer sets the token provider for secured commands.
func WithAuthorizer(a Authorizer) PipelineOption {
	return func(p *Pipeline) { p.authorizer = a }
}

// NewPipeline creates a pipeline bound to a settings source and dispatcher.
func NewPipeline(settings SettingsSource, dispatcher Dispatcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		settings:   settings,
		dispatcher: dispatcher,
		logger:     log.New(io.Discard),
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetAuthorizer installs the token provider. Call it before executing secured commands.
func (p *Pipeline) SetAuthorizer(a Authorizer) { p.authorizer = a }

// Settings returns the current settings snapshot.
func (p *Pipeline) Settings() ClientSettings { return p.settings() }

// Dispatcher returns the underlying dispatcher.
func (p *Pipeline) Dispatcher() Dispatcher { return p.dispatcher }

// Execute runs a single-result command.
//
// The returned error is non-nil only for argument/URI validation failures and cancellation;
// every service or transport failure is reported through [Response.Error].
func Execute[T any](ctx context.Context, p *Pipeline, cmd Command[T]) (*ItemResponse[T], error) {
	result, resp, err := run(ctx, p, cmd)
	if err != nil {
		return nil, err
	}
	return &ItemResponse[T]{Response: resp, Result: result}, nil
}

// ExecuteList runs a list command and flattens its page into a [ListResponse].
func ExecuteList[E any](ctx context.Context, p *Pipeline, cmd Command[Page[E]]) (*ListResponse[E], error) {
	page, resp, err := run(ctx, p, cmd)
	if err != nil {
		return nil, err
	}
	return newListResponse(resp, page), nil
}

func run[T any](ctx context.Context, p *Pipeline, cmd Command[T]) (T, Response, error) {
	var zero T
	desc := cmd.Descriptor()
	settings := p.settings()

	requestID, ok := RequestIDFrom(ctx)
	if !ok {
		requestID = p.newID()
	}
	resp := Response{RequestID: requestID}

	var path strings.Builder
	if err := cmd.AppendPath(&path); err != nil {
		if classified(err) {
			resp.Error = tagRequest(err, requestID)
			return zero, resp, nil
		}
		return zero, Response{}, err
	}

	var query Query
	if err := cmd.BuildQuery(&query); err != nil {
		return zero, Response{}, err
	}

	body, err := cmd.EncodeBody()
	if err != nil {
		return zero, Response{}, err
	}

	header := http.Header{}
	if desc.Secured {
		token, err := p.authorize(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, Response{}, ctxErr
			}
			resp.Error = tagRequest(err, requestID)
			return zero, resp, nil
		}
		header.Set("Authorization", "Bearer "+token)
		settings = p.settings()
	}

	uri, err := BuildURI(desc, settings, settings.BaseURL(desc.Secured || desc.SecureBaseURL), path.String(), &query)
	if err != nil {
		return zero, Response{}, err
	}

	if err := ctx.Err(); err != nil {
		return zero, Response{}, err
	}

	logger := p.logger.With("request_id", requestID)
	logger.Debug("dispatching request", "method", desc.method(), "uri", redact(uri))

	raw, err := p.dispatcher.Dispatch(ctx, &Request{
		Method:      desc.method(),
		URI:         uri,
		Header:      header,
		Body:        body,
		ContentType: desc.ContentType,
		RequestID:   requestID,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, Response{}, ctxErr
		}
		if !classified(err) {
			err = &Error{Kind: ErrNetworkUnavailable, Err: err}
		}
		resp.Error = tagRequest(err, requestID)
		logger.Debug("request failed before a response", "error", resp.Error)
		return zero, resp, nil
	}

	status := raw.StatusCode
	resp.StatusCode = &status
	resp.ContentType = raw.ContentType
	resp.IdentityHeaderMissing = raw.IdentityHeaderMissing

	if Decodable(raw.StatusCode, raw.ContentType) {
		result, err := cmd.Decode(raw.Body)
		if err != nil {
			resp.Error = &Error{Kind: ErrAPICallFailed, StatusCode: status, RequestID: requestID, Body: string(raw.Body), Err: err}
			resp.ErrorBody = string(raw.Body)
			logger.Debug("response decode failed", "status", status, "error", err)
			return zero, resp, nil
		}
		logger.Debug("request succeeded", "status", status)
		return result, resp, nil
	}

	resp.Error = tagRequest(Classify(raw, settings), requestID)
	resp.ErrorBody = string(raw.Body)
	logger.Debug("request classified as failure", "status", status, "error", resp.Error)
	return zero, resp, nil
}

func (p *Pipeline) authorize(ctx context.Context) (string, error) {
	if p.authorizer == nil {
		return "", &Error{Kind: ErrUserAuthRequired}
	}
	token, err := p.authorizer.Authorize(ctx)
	if err != nil {
		switch {
		case classified(err):
			return "", err
		case err == ErrUserAuthRequired:
			return "", &Error{Kind: ErrUserAuthRequired}
		default:
			return "", &Error{Kind: ErrUserAuthRequired, Err: err}
		}
	}
	if token == "" {
		return "", &Error{Kind: ErrUserAuthRequired}
	}
	return token, nil
}

// tagRequest returns a copy of a classified error stamped with the request id. The original may
// be shared between callers of a single-flighted refresh, so it is never mutated.
func tagRequest(err error, requestID string) error {
	apiErr, ok := err.(*Error)
	if !ok || apiErr.RequestID != "" {
		return err
	}
	tagged := *apiErr
	tagged.RequestID = requestID
	return &tagged
}

// redact hides the client id in logged URIs.
func redact(uri string) string {
	i := strings.Index(uri, "client_id=")
	if i < 0 {
		return uri
	}
	end := strings.IndexByte(uri[i:], '&')
	if end < 0 {
		return uri[:i] + "client_id=***"
	}
	return uri[:i] + "client_id=***" + uri[i+end:]
}
