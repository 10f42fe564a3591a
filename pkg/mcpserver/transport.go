package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wilhg/dahua-mcp/pkg/config"
)

// RunStdio serves a single session over stdin/stdout and returns when the
// client disconnects or ctx is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.newMCPServer().Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler builds the HTTP surface for the http and sse transports:
// the MCP endpoint, behind bearer auth when a token is configured, plus an
// unauthenticated /healthz.
func (s *Server) HTTPHandler(cfg config.Transport) (http.Handler, error) {
	getServer := func(*http.Request) *mcp.Server { return s.newMCPServer() }

	var endpoint string
	var handler http.Handler
	switch cfg.Type {
	case config.TransportHTTP:
		endpoint = "/mcp"
		handler = mcp.NewStreamableHTTPHandler(getServer, nil)
	case config.TransportSSE:
		endpoint = "/sse"
		handler = mcp.NewSSEHandler(getServer, nil)
	default:
		return nil, fmt.Errorf("transport %q does not serve HTTP", cfg.Type)
	}

	mux := http.NewServeMux()
	mux.Handle(endpoint, requireBearer(cfg.BearerToken, handler))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux, nil
}

// RunHTTP serves the http or sse transport until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) RunHTTP(ctx context.Context, cfg config.Transport) error {
	handler, err := s.HTTPHandler(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s transport listening on %s", cfg.Type, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
