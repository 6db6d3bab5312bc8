package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	raw      *RawResponse
	err      error
	requests []*Request
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req *Request) (*RawResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func (f *fakeDispatcher) ServerTimeUTC() time.Time { return time.Now().UTC() }

func (f *fakeDispatcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeAuthorizer struct {
	token string
	err   error
	calls int
}

func (a *fakeAuthorizer) Authorize(context.Context) (string, error) {
	a.calls++
	return a.token, a.err
}

func jsonResponse(status int, body string) *RawResponse {
	return &RawResponse{StatusCode: status, ContentType: VendorContentType + "+json", Body: []byte(body)}
}

func namedList(path string) *ListCommand[named] {
	return &ListCommand[named]{
		Desc:       Descriptor{RequiresCountryCode: true},
		Path:       StaticPath(path),
		ItemsField: "items",
		Convert:    convertNamed,
	}
}

func newTestPipeline(t *testing.T, d Dispatcher, opts ...PipelineOption) *Pipeline {
	settings := testSettings(t, "gb")
	return NewPipeline(func() ClientSettings { return settings }, d, opts...)
}

func TestExecuteList(t *testing.T) {
	t.Run("success has no error", func(t *testing.T) {
		d := &fakeDispatcher{raw: jsonResponse(http.StatusOK, `{"items":[{"id":"1"},{"id":"2"}],"paging":{"startindex":0,"itemsperpage":10,"total":2}}`)}
		p := newTestPipeline(t, d)

		resp, err := ExecuteList(context.Background(), p, namedList("genres/"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.Succeeded() || resp.Error != nil {
			t.Fatalf("expected success, got %v", resp.Error)
		}
		if len(resp.Items) != 2 || !resp.HasPaging() || *resp.TotalResults != 2 {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Status() != http.StatusOK || resp.TimedOut() {
			t.Errorf("unexpected status %d", resp.Status())
		}
		if resp.RequestID == "" {
			t.Error("expected a generated request id")
		}
	})

	t.Run("default paging is sent first", func(t *testing.T) {
		d := &fakeDispatcher{raw: jsonResponse(http.StatusOK, `{"items":[]}`)}
		p := newTestPipeline(t, d)

		cmd := namedList("genres/")
		cmd.Params = func(q *Query) error {
			q.Add("genre", "rock")
			return nil
		}
		if _, err := ExecuteList(context.Background(), p, cmd); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		uri := d.requests[0].URI
		if !strings.HasSuffix(uri, "&startindex=0&itemsperpage=10&genre=rock") {
			t.Errorf("unexpected uri %s", uri)
		}
	})

	t.Run("unpaged command", func(t *testing.T) {
		d := &fakeDispatcher{raw: jsonResponse(http.StatusOK, `{"items":[]}`)}
		p := newTestPipeline(t, d)

		cmd := namedList("genres/")
		cmd.Unpaged = true
		ExecuteList(context.Background(), p, cmd)

		if strings.Contains(d.requests[0].URI, "startindex") {
			t.Errorf("expected no paging params, got %s", d.requests[0].URI)
		}
	})

	t.Run("failure carries the error", func(t *testing.T) {
		d := &fakeDispatcher{raw: &RawResponse{StatusCode: http.StatusInternalServerError, Body: []byte("oops")}}
		p := newTestPipeline(t, d)

		resp, err := ExecuteList(context.Background(), p, namedList("genres/"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Succeeded() || !errors.Is(resp.Error, ErrAPICallFailed) {
			t.Errorf("expected ErrAPICallFailed, got %v", resp.Error)
		}
		if resp.ErrorBody != "oops" {
			t.Errorf("expected error body, got %q", resp.ErrorBody)
		}
		var apiErr *Error
		if !errors.As(resp.Error, &apiErr) || apiErr.RequestID != resp.RequestID {
			t.Errorf("expected error to carry request id %s", resp.RequestID)
		}
	})

	t.Run("argument error before dispatch", func(t *testing.T) {
		d := &fakeDispatcher{}
		p := newTestPipeline(t, d)

		cmd := namedList("")
		cmd.Path = func(*strings.Builder) error { return ArgumentError("id is required") }

		_, err := ExecuteList(context.Background(), p, cmd)
		if !IsArgumentError(err) {
			t.Errorf("expected argument error, got %v", err)
		}
		if d.calls() != 0 {
			t.Errorf("expected no dispatch, got %d", d.calls())
		}
	})

	t.Run("query error before dispatch", func(t *testing.T) {
		d := &fakeDispatcher{}
		p := newTestPipeline(t, d)

		cmd := namedList("search/")
		cmd.Params = func(*Query) error { return ArgumentError("search term required") }
		if _, err := ExecuteList(context.Background(), p, cmd); !IsArgumentError(err) {
			t.Errorf("expected argument error, got %v", err)
		}
		if d.calls() != 0 {
			t.Error("expected no dispatch")
		}
	})

	t.Run("cancelled before dispatch", func(t *testing.T) {
		d := &fakeDispatcher{}
		p := newTestPipeline(t, d)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := ExecuteList(ctx, p, namedList("genres/")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if d.calls() != 0 {
			t.Error("expected no dispatch")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		d := &fakeDispatcher{err: errors.New("dial tcp: refused")}
		p := newTestPipeline(t, d)

		resp, err := ExecuteList(context.Background(), p, namedList("genres/"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !errors.Is(resp.Error, ErrNetworkUnavailable) || !resp.TimedOut() {
			t.Errorf("expected ErrNetworkUnavailable without status, got %v", resp.Error)
		}
	})

	t.Run("undecodable success payload", func(t *testing.T) {
		d := &fakeDispatcher{raw: jsonResponse(http.StatusOK, `not json`)}
		p := newTestPipeline(t, d)

		resp, _ := ExecuteList(context.Background(), p, namedList("genres/"))
		if !errors.Is(resp.Error, ErrAPICallFailed) {
			t.Errorf("expected ErrAPICallFailed, got %v", resp.Error)
		}
	})

	t.Run("caller request id", func(t *testing.T) {
		d := &fakeDispatcher{raw: jsonResponse(http.StatusOK, `{"items":[]}`)}
		p := newTestPipeline(t, d)

		ctx := WithRequestID(context.Background(), "trace-7")
		resp, _ := ExecuteList(ctx, p, namedList("genres/"))
		if resp.RequestID != "trace-7" || d.requests[0].RequestID != "trace-7" {
			t.Errorf("expected caller request id, got %s", resp.RequestID)
		}
	})
}

func TestExecuteSecured(t *testing.T) {
	secured := func() *ItemCommand[named] {
		return &ItemCommand[named]{
			Desc:    Descriptor{Secured: true, RequiresCountryCode: true, UseBlankTerritory: true},
			Path:    StaticPath("users/u1/playhistory/"),
			Convert: convertNamed,
		}
	}

	t.Run("without authorizer", func(t *testing.T) {
		d := &fakeDispatcher{}
		p := newTestPipeline(t, d)

		resp, err := Execute(context.Background(), p, secured())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !errors.Is(resp.Error, ErrUserAuthRequired) {
			t.Errorf("expected ErrUserAuthRequired, got %v", resp.Error)
		}
		if d.calls() != 0 {
			t.Error("expected no dispatch")
		}
	})

	t.Run("bearer token and secure base", func(t *testing.T) {
		d := &fakeDispatcher{raw: jsonResponse(http.StatusOK, `{"id":"x"}`)}
		auth := &fakeAuthorizer{token: "tok"}
		p := newTestPipeline(t, d, WithAuthorizer(auth))

		resp, err := Execute(context.Background(), p, secured())
		if err != nil || !resp.Succeeded() {
			t.Fatalf("expected success, got %v / %v", err, resp.Error)
		}
		req := d.requests[0]
		if req.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected authorization %q", req.Header.Get("Authorization"))
		}
		if !strings.HasPrefix(req.URI, "https://sapi.example/1.x/-/users/u1/playhistory/") {
			t.Errorf("unexpected uri %s", req.URI)
		}
		if resp.Result.ID != "x" {
			t.Errorf("unexpected result %+v", resp.Result)
		}
	})

	t.Run("authorizer failure", func(t *testing.T) {
		d := &fakeDispatcher{}
		p := newTestPipeline(t, d, WithAuthorizer(&fakeAuthorizer{err: ErrUserAuthRequired}))

		resp, _ := Execute(context.Background(), p, secured())
		if !errors.Is(resp.Error, ErrUserAuthRequired) {
			t.Errorf("expected ErrUserAuthRequired, got %v", resp.Error)
		}
	})

	t.Run("argument error before authorization", func(t *testing.T) {
		d := &fakeDispatcher{}
		auth := &fakeAuthorizer{token: "tok"}
		p := newTestPipeline(t, d, WithAuthorizer(auth))

		cmd := secured()
		cmd.Params = func(*Query) error { return ArgumentError("count is required") }

		_, err := Execute(context.Background(), p, cmd)
		if !IsArgumentError(err) {
			t.Errorf("expected argument error, got %v", err)
		}
		if auth.calls != 0 || d.calls() != 0 {
			t.Errorf("expected no authorization or dispatch, got %d / %d", auth.calls, d.calls())
		}
	})

	t.Run("classified path failure is a response error", func(t *testing.T) {
		d := &fakeDispatcher{}
		auth := &fakeAuthorizer{token: "tok"}
		p := newTestPipeline(t, d, WithAuthorizer(auth))

		cmd := secured()
		cmd.Path = func(*strings.Builder) error { return NewError(ErrUserAuthRequired, 0, nil) }

		resp, err := Execute(context.Background(), p, cmd)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !errors.Is(resp.Error, ErrUserAuthRequired) || resp.RequestID == "" {
			t.Errorf("expected tagged ErrUserAuthRequired, got %v", resp.Error)
		}
		if auth.calls != 0 {
			t.Errorf("expected no authorization, got %d", auth.calls)
		}
	})

	t.Run("classified authorizer failure passes through", func(t *testing.T) {
		d := &fakeDispatcher{}
		p := newTestPipeline(t, d, WithAuthorizer(&fakeAuthorizer{err: NewError(ErrInvalidCredentials, 401, nil)}))

		resp, _ := Execute(context.Background(), p, secured())
		if !errors.Is(resp.Error, ErrInvalidCredentials) || resp.Status() != 0 {
			t.Errorf("expected ErrInvalidCredentials, got %v", resp.Error)
		}
	})
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"http://a/?client_id=secret&lang=en": "http://a/?client_id=***&lang=en",
		"http://a/?client_id=secret":         "http://a/?client_id=***",
		"http://a/token/":                    "http://a/token/",
	}
	for in, want := range tests {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}
