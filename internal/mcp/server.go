package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	oauth "github.com/tuannvm/oauth-mcp-proxy"
	mcpoauth "github.com/tuannvm/oauth-mcp-proxy/mcp"
)

const (
	// ServerName is the MCP server name.
	ServerName = "dynoteam"
	// ServerVersion is the MCP server version.
	ServerVersion = "1.0.0"
)

// ServerInstructions provides usage guidance for LLMs.
const ServerInstructions = `Dynoteam runs teams of agents whose dependencies form a graph. Agents are grouped into levels: every agent in a level depends only on agents in earlier levels, and each agent receives its prerequisites' results as context.

Available tools:
- plan_team: Show the execution levels of a team file
- list_agents: List a team's agents with kind, role, dependencies and level
- validate_team: Check team files for schema, unknown dependency and cycle errors
- run_team: Run a team in sequential, parallel or optimal mode and return per-agent results

Typical workflow:
1. Use validate_team on the team file
2. Use plan_team to see which agents run together
3. Use run_team, optionally with context values or per-agent task overrides`

// ServerConfig holds configuration for creating an MCP server.
type ServerConfig struct {
	Name         string
	Version      string
	Instructions string
	Logger       *slog.Logger
	Handlers     *Handlers

	// Transport settings
	Port           int
	SessionTimeout time.Duration

	// OAuth settings (optional)
	OAuth *OAuthConfig
}

// OAuthConfig holds OAuth-specific configuration.
type OAuthConfig struct {
	Provider  string // okta, google, azure, hmac
	Issuer    string
	Audience  string
	ServerURL string // Base URL for OAuth callbacks (e.g., https://example.com:8080)
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Name:           ServerName,
		Version:        ServerVersion,
		Instructions:   ServerInstructions,
		Logger:         slog.Default(),
		Handlers:       NewHandlers(),
		Port:           8080,
		SessionTimeout: 30 * time.Minute,
	}
}

// Server represents the MCP server with all components.
type Server struct {
	mcpServer   *mcp.Server
	config      *ServerConfig
	oauthServer *oauth.Server
}

// NewServer creates a new MCP server instance with all components.
func NewServer(cfg *ServerConfig) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if cfg.Name == "" {
		cfg.Name = ServerName
	}
	if cfg.Version == "" {
		cfg.Version = ServerVersion
	}
	if cfg.Instructions == "" {
		cfg.Instructions = ServerInstructions
	}
	if cfg.Handlers == nil {
		cfg.Handlers = NewHandlers()
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Minute
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		&mcp.ServerOptions{
			Instructions: cfg.Instructions,
			Logger:       cfg.Logger,
		},
	)

	// Register all tools
	registerTools(mcpServer, cfg.Handlers)

	return &Server{
		mcpServer: mcpServer,
		config:    cfg,
	}
}

// ServeStdio starts the MCP server with STDIO transport.
func (s *Server) ServeStdio(ctx context.Context) error {
	log.Println("Starting dynoteam MCP server on stdio transport")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying server so callers can attach other transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Handler returns the streamable HTTP routes: /mcp and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.streamableHandler())
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// OAuthHandler returns the routes with /mcp behind OAuth 2.1.
func (s *Server) OAuthHandler() (http.Handler, error) {
	if s.config.OAuth == nil {
		return nil, fmt.Errorf("OAuth configuration is required")
	}

	// Use configured ServerURL or fall back to localhost
	serverURL := s.config.OAuth.ServerURL
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", s.config.Port)
	}

	mux := http.NewServeMux()
	oauthServer, handler, err := mcpoauth.WithOAuth(mux, &oauth.Config{
		Provider:  s.config.OAuth.Provider,
		Issuer:    s.config.OAuth.Issuer,
		Audience:  s.config.OAuth.Audience,
		ServerURL: serverURL,
	}, s.mcpServer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}
	s.oauthServer = oauthServer

	mux.Handle("/mcp", handler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux, nil
}

// ServeHTTP serves the streamable HTTP transport until ctx is done or the
// process is interrupted.
func (s *Server) ServeHTTP(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting dynoteam MCP server on http://localhost%s/mcp", addr)
	log.Printf("Health check: http://localhost%s/health", addr)

	return s.runHTTPServer(ctx, addr, s.Handler())
}

// ServeHTTPWithOAuth serves the OAuth-protected HTTP transport.
func (s *Server) ServeHTTPWithOAuth(ctx context.Context) error {
	handler, err := s.OAuthHandler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting dynoteam MCP server with OAuth on %s/mcp", addr)
	log.Printf("OAuth provider: %s", s.config.OAuth.Provider)
	log.Printf("OAuth issuer: %s", s.config.OAuth.Issuer)
	s.oauthServer.LogStartup(false)

	return s.runHTTPServer(ctx, addr, handler)
}

func (s *Server) streamableHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		SessionTimeout: s.config.SessionTimeout,
		Logger:         s.config.Logger,
	})
}

// healthHandler reports liveness and the server version.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, s.config.Version)
}

// runHTTPServer runs an HTTP server and shuts it down gracefully on
// SIGINT/SIGTERM or when ctx is done.
func (s *Server) runHTTPServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // run_team streams for as long as the team runs
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-errCh
}

// boolPtr creates a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}
