package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixradio/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// CallbackServer serves a [CallbackHandler] on a loopback address.
type CallbackServer struct {
	handler *CallbackHandler
	logger  *log.Logger
	ready   func(addr string)
}

// CallbackOption configures a [CallbackServer].
type CallbackOption func(*CallbackServer)

// WithServerLogger sets the request logger.
func WithServerLogger(l *log.Logger) CallbackOption {
	return func(s *CallbackServer) {
		if l != nil {
			s.logger = l
		}
	}
}

// OnReady is called with the bound address once the listener is up. Open the browser here.
func OnReady(fn func(addr string)) CallbackOption {
	return func(s *CallbackServer) { s.ready = fn }
}

// NewCallbackServer wraps handler.
func NewCallbackServer(handler *CallbackHandler, opts ...CallbackOption) *CallbackServer {
	s := &CallbackServer{handler: handler, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Await listens on addr ("host:port", port 0 picks a free one) until the handler reports a
// result or ctx ends. A ctx deadline maps to [shared.ErrTimeout].
func (s *CallbackServer) Await(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	router := NewBasicRouter()
	router.Use(Recover(s.logger), Logging(s.logger))
	router.Handler(s.handler)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	s.logger.Info("waiting for authorization callback", "addr", ln.Addr().String())
	if s.ready != nil {
		s.ready(ln.Addr().String())
	}

	var result error
	select {
	case r := <-s.handler.Result():
		result = r.Err
	case err := <-serveErr:
		result = fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result = fmt.Errorf("%w: no authorization callback received", shared.ErrTimeout)
		} else {
			result = ctx.Err()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down callback server", "error", err)
	}
	return result
}
