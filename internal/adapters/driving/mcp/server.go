package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// DefaultInstructions tell connected assistants how the tools fit together.
const DefaultInstructions = "Use build_context to fetch prompt-ready background for a question. " +
	"Use search when individual ranked matches are needed. " +
	"index_content stores new text for later retrieval."

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*options)

type options struct {
	version      string
	instructions string
}

// WithVersion overrides the version reported to clients.
func WithVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.version = v
		}
	}
}

// WithInstructions overrides the instructions sent on initialisation.
func WithInstructions(text string) Option {
	return func(o *options) {
		o.instructions = text
	}
}

// Server exposes retrieval and indexing to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a server over the given ports. Indexing tools and the
// stats resource are only registered when ports.Index is set.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	o := options{version: Version, instructions: DefaultInstructions}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "sercha-rag", Version: o.version},
			&mcp.ServerOptions{Instructions: o.instructions},
		),
	}
	s.server.AddReceivingMiddleware(logRequests)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// ReadOnly reports whether indexing tools are unavailable.
func (s *Server) ReadOnly() bool {
	return s.ports.Index == nil
}

// Run serves a single client over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("MCP server running on stdio (read-only=%t)", s.ReadOnly())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP listens on addr and serves until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts HTTP connections on ln until ctx is cancelled, then shuts
// down gracefully. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s (read-only=%t)", ln.Addr(), s.ReadOnly())
	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// logRequests records every incoming method with its duration.
func logRequests(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		defer logger.Timed("mcp " + method)()
		result, err := next(ctx, method, req)
		if err != nil {
			logger.Warn("MCP %s failed: %v", method, err)
		}
		return result, err
	}
}
