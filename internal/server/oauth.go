package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/mixradio/internal/shared"
)

// Exchanger trades an authorization code for a token.
type Exchanger func(ctx context.Context, code string) error

// CallbackResult is the outcome of the one callback a [CallbackHandler] accepts.
type CallbackResult struct {
	Err error
}

// CallbackHandler handles the authorize redirect.
type CallbackHandler struct {
	path     string
	state    string
	exchange Exchanger
	results  chan CallbackResult
	once     sync.Once
	mu       sync.Mutex
	hit      bool
}

// NewCallbackHandler serves path, expects state back and calls exchange with the code.
// path "" means "/callback".
func NewCallbackHandler(path, state string, exchange Exchanger) *CallbackHandler {
	if path == "" {
		path = "/callback"
	}
	return &CallbackHandler{
		path:     path,
		state:    state,
		exchange: exchange,
		results:  make(chan CallbackResult, 1),
	}
}

func (h *CallbackHandler) Routes() []string { return []string{"GET " + h.path} }

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.send(CallbackResult{Err: shared.ErrStateMismatch})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.send(CallbackResult{Err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if err := h.exchange(r.Context(), code); err != nil {
		h.send(CallbackResult{Err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}

	h.send(CallbackResult{})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result receives exactly one value and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Signed in</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #e4002b; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Signed in to MixRadio</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
