package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 30 * time.Second
	timeoutBody       = `{"error":"request timed out"}`
)

// An HTTPServer serves the admin API.
type HTTPServer struct {
	httpServer *http.Server
}

// NewHTTPServer wraps the handler so that no request outlives timeout.
// Timeout has to cover a backend mutation followed by a full reload.
func NewHTTPServer(
	addr string, handler http.Handler, timeout time.Duration,
) HTTPServer {
	s := &http.Server{
		Addr:              addr,
		Handler:           http.TimeoutHandler(handler, timeout, timeoutBody),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return HTTPServer{s}
}

// Run blocks until the server stops and cancels the app context when it
// stops for any reason other than Close.
func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op, "addr", s.httpServer.Addr)

	defer stopFn()
	log.Info("serving admin API")
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("unexpected server shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
		return
	}
	log.Info("http server is closed")
}
