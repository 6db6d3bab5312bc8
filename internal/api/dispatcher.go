package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout   = 30 * time.Second
	defaultUserAgent = "mixradio-go/1.0"
	requestIDHeader  = "X-Request-Id"
)

// Request is what a command hands to the [Dispatcher].
type Request struct {
	Method      string
	URI         string
	Header      http.Header
	Body        []byte
	ContentType string
	RequestID   string
}

// RawResponse is the undecoded result of a dispatch.
type RawResponse struct {
	StatusCode            int
	Header                http.Header
	Body                  []byte
	ContentType           string
	IdentityHeaderMissing *bool
}

// Dispatcher performs HTTP calls for commands and tracks the server clock.
//
// A transport failure is returned as an error; dispatchers return [*Error] values for failures
// they can classify themselves (network unavailable, timeouts) and the raw context error on
// cancellation.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *Request) (*RawResponse, error)
	ServerTimeUTC() time.Time
}

// HTTPDispatcher is the [net/http] backed [Dispatcher].
type HTTPDispatcher struct {
	client         *http.Client
	userAgent      string
	identityHeader string
	logger         *log.Logger
	now            func() time.Time
	clockOffset    atomic.Int64
}

// DispatcherOption configures an [HTTPDispatcher].
type DispatcherOption func(*HTTPDispatcher)

// WithHTTPClient sets a custom [http.Client]. Pass it before [WithTimeout] when combining both.
func WithHTTPClient(c *http.Client) DispatcherOption {
	return func(d *HTTPDispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *HTTPDispatcher) {
		if timeout > 0 {
			client := *d.client
			client.Timeout = timeout
			d.client = &client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) DispatcherOption {
	return func(d *HTTPDispatcher) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithIdentityHeader names the header every genuine service response carries. When set, each
// response reports whether it was missing, which signals captive portals and carrier proxies.
func WithIdentityHeader(name string) DispatcherOption {
	return func(d *HTTPDispatcher) { d.identityHeader = http.CanonicalHeaderKey(name) }
}

// WithDispatcherLogger sets the logger used for transport diagnostics.
func WithDispatcherLogger(l *log.Logger) DispatcherOption {
	return func(d *HTTPDispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewHTTPDispatcher creates a dispatcher with [DefaultTimeout] unless overridden.
func NewHTTPDispatcher(opts ...DispatcherOption) *HTTPDispatcher {
	d := &HTTPDispatcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
		logger:    log.New(io.Discard),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends req and reads the whole body.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, req *Request) (*RawResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URI, body)
	if err != nil {
		return nil, &Error{Kind: ErrAPICallFailed, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("User-Agent", d.userAgent)
	httpReq.Header.Set("Accept", VendorContentType+", "+jsonContentType)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.RequestID != "" {
		httpReq.Header.Set(requestIDHeader, req.RequestID)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, d.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Kind: ErrNetworkUnavailable, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	d.observeClock(resp.Header)

	raw := &RawResponse{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if d.identityHeader != "" {
		missing := resp.Header.Get(d.identityHeader) == ""
		raw.IdentityHeaderMissing = &missing
	}
	return raw, nil
}

// ServerTimeUTC is the local clock corrected by the offset observed in the last Date header.
func (d *HTTPDispatcher) ServerTimeUTC() time.Time {
	return d.now().UTC().Add(time.Duration(d.clockOffset.Load()))
}

func (d *HTTPDispatcher) observeClock(h http.Header) {
	date := h.Get("Date")
	if date == "" {
		return
	}
	serverTime, err := http.ParseTime(date)
	if err != nil {
		d.logger.Debug("ignoring unparseable Date header", "date", date)
		return
	}
	d.clockOffset.Store(int64(serverTime.Sub(d.now())))
}

func (d *HTTPDispatcher) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: ErrAPICallFailed, Err: fmt.Errorf("request timed out: %w", err)}
	}
	return &Error{Kind: ErrNetworkUnavailable, Err: err}
}
