package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/coder/agentapi/lib/httpapi"
	"github.com/coder/agentapi/lib/logctx"
	"github.com/coder/agentapi/lib/msgfmt"
	"github.com/coder/agentapi/lib/termexec"

	"github.com/tuannvm/dynoteam/internal/logging"
)

// LibClient runs a terminal agent in-process through the agentapi library
// and serves its HTTP API on Port.
type LibClient struct {
	process *termexec.Process
	server  *httpapi.Server
	port    int
	logger  *slog.Logger
}

// LibClientConfig configures the library client
type LibClientConfig struct {
	Port           int
	Verbose        bool
	AgentType      string   // agentapi agent type, e.g. "claude", "goose", "aider"
	AgentCmd       string   // e.g., "claude"
	AgentArgs      []string // additional args for the agent
	TerminalWidth  uint16
	TerminalHeight uint16
}

// NewLibClient starts the agent process and prepares the HTTP server.
func NewLibClient(ctx context.Context, cfg LibClientConfig) (*LibClient, error) {
	if cfg.TerminalWidth == 0 {
		cfg.TerminalWidth = 180
	}
	if cfg.TerminalHeight == 0 {
		cfg.TerminalHeight = 50
	}
	if cfg.AgentCmd == "" {
		cfg.AgentCmd = "claude"
	}
	agentType := msgfmt.AgentTypeClaude
	if cfg.AgentType != "" {
		agentType = msgfmt.AgentType(cfg.AgentType)
	}

	logger := logging.Discard()
	if cfg.Verbose {
		l, err := logging.New(logging.Options{Level: "debug", Format: logging.FormatText, Prefix: cfg.AgentCmd, Writer: os.Stderr})
		if err != nil {
			return nil, err
		}
		logger = l
	}

	// agentapi reads its logger from the context
	ctx = logctx.WithLogger(ctx, logger)

	process, err := termexec.StartProcess(ctx, termexec.StartProcessConfig{
		Program:        cfg.AgentCmd,
		Args:           cfg.AgentArgs,
		TerminalWidth:  cfg.TerminalWidth,
		TerminalHeight: cfg.TerminalHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start agent process: %w", err)
	}

	server, err := httpapi.NewServer(ctx, httpapi.ServerConfig{
		AgentType:      agentType,
		Process:        process,
		Port:           cfg.Port,
		AllowedHosts:   []string{"localhost", "127.0.0.1"},
		AllowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
	})
	if err != nil {
		_ = process.Close(logger, 5*time.Second)
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	// The snapshot loop drives running/stable status detection.
	server.StartSnapshotLoop(ctx)

	return &LibClient{
		process: process,
		server:  server,
		port:    cfg.Port,
		logger:  logger,
	}, nil
}

// Start begins serving the HTTP API (non-blocking)
func (c *LibClient) Start() error {
	errCh := make(chan error, 1)
	go func() {
		if err := c.server.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Port returns the port the server is listening on
func (c *LibClient) Port() int {
	return c.port
}

// Close shuts down the agent and server
func (c *LibClient) Close(ctx context.Context) error {
	var errs []error
	if c.server != nil {
		if err := c.server.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server stop: %w", err))
		}
	}
	if c.process != nil {
		if err := c.process.Close(c.logger, 10*time.Second); err != nil {
			errs = append(errs, fmt.Errorf("process close: %w", err))
		}
	}
	return errors.Join(errs...)
}
