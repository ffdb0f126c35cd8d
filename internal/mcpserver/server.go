package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/alertr/internal/alerts"
	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/preview"
	"github.com/mark3labs/mcp-go/server"
)

// AlertStore is the part of the alert history the tools use.
type AlertStore interface {
	List(ctx context.Context) ([]alerts.TableItem, error)
	Get(ctx context.Context, id string) (alerts.Alert, error)
	Delete(ctx context.Context, id string) error
}

// Server is an embedded MCP HTTP server exposing the alert history as tools.
type Server struct {
	store     AlertStore
	preview   preview.Config
	mcpServer *server.MCPServer
	stdServer *http.Server
	port      int
	mu        sync.Mutex
}

// New creates a server over store. previewCfg resolves recipient names in get-alert.
// The server is not started until Start() is called.
func New(store AlertStore, previewCfg preview.Config) *Server {
	return &Server{
		store:   store,
		preview: previewCfg,
	}
}

// Start starts the MCP HTTP server on 127.0.0.1. A zero port picks a free one.
// Returns the bound port.
func (s *Server) Start(ctx context.Context, port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	s.mcpServer = server.NewMCPServer(
		"alertr-history",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("failed to listen: %w", err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	))
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop stops the MCP HTTP server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.stdServer = nil
	s.mcpServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP server endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://127.0.0.1:%d/mcp", s.port)
}
