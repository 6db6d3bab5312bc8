// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mixradio/internal/api"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter passes the first n writes through to w and fails the rest
type LimitedWriter struct {
	n int
	w io.Writer
}

func NewLimitedWriter(n int, w io.Writer) *LimitedWriter {
	return &LimitedWriter{n: n, w: w}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, errors.New("write limit reached")
	}
	l.n--
	return l.w.Write(p)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// StubDispatcher is an [api.Dispatcher] that replays canned responses and records requests.
//
// Responses are served in order; the last one repeats once the queue is exhausted.
type StubDispatcher struct {
	mu        sync.Mutex
	responses []*api.RawResponse
	Err       error
	Now       time.Time
	Requests  []*api.Request
}

// NewStubDispatcher creates a dispatcher whose clock reads now.
func NewStubDispatcher(now time.Time, responses ...*api.RawResponse) *StubDispatcher {
	return &StubDispatcher{responses: responses, Now: now}
}

func (s *StubDispatcher) Dispatch(ctx context.Context, req *api.Request) (*api.RawResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("stub dispatcher has no responses")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func (s *StubDispatcher) ServerTimeUTC() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Now
}

// SetNow moves the stub clock.
func (s *StubDispatcher) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Now = now
}

// Calls returns how many requests were dispatched.
func (s *StubDispatcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// LastURI returns the URI of the most recent request.
func (s *StubDispatcher) LastURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Requests) == 0 {
		return ""
	}
	return s.Requests[len(s.Requests)-1].URI
}

// NewJSONResponse builds a 200 response with the vendor content type.
func NewJSONResponse(body string) *api.RawResponse {
	return NewRawResponse(http.StatusOK, api.VendorContentType+"+json; charset=utf-8", body)
}

// NewRawResponse builds a response with an explicit status and content type.
func NewRawResponse(status int, contentType, body string) *api.RawResponse {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &api.RawResponse{StatusCode: status, Header: h, Body: []byte(body), ContentType: contentType}
}

// MustSettings builds client settings or fails the test.
func MustSettings(t *testing.T, clientID, countryCode string, opts ...api.SettingsOption) api.ClientSettings {
	t.Helper()
	s, err := api.NewClientSettings(clientID, countryCode, opts...)
	if err != nil {
		t.Fatalf("failed to build settings: %v", err)
	}
	return s
}

// QueryValue extracts one query parameter from a raw URI.
func QueryValue(uri, key string) string {
	_, query, ok := strings.Cut(uri, "?")
	if !ok {
		return ""
	}
	for _, pair := range strings.Split(query, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == key {
			return v
		}
	}
	return ""
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
