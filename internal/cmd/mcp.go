package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dynomcp "github.com/tuannvm/dynoteam/internal/mcp"
)

var mcpFlags struct {
	oauth          bool
	provider       string
	issuer         string
	audience       string
	serverURL      string
	sessionTimeout time.Duration
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run dynoteam as an MCP server",
	Long: `Run dynoteam as an MCP (Model Context Protocol) server.

Transports:
  stdio    Standard input/output for CLI integration (default)
  http     Streamable HTTP transport for web integration

Examples:
  dynoteam mcp                                    # stdio mode
  dynoteam mcp --transport http --port 8080       # HTTP mode
  dynoteam mcp --transport http --oauth \
    --issuer https://company.okta.com \
    --audience api://dynoteam                     # HTTP with OAuth`,
	Args: cobra.NoArgs,
	RunE: mcpCommand,
}

func init() {
	f := mcpCmd.Flags()
	f.String("transport", "stdio", "transport mode: stdio, http (env DYNOTEAM_MCP_TRANSPORT)")
	f.Int("port", 8080, "HTTP port, only used with --transport http (env DYNOTEAM_MCP_PORT)")
	f.BoolVar(&mcpFlags.oauth, "oauth", false, "enable OAuth 2.1 authentication (only with http transport)")
	f.StringVar(&mcpFlags.provider, "provider", "okta", "OAuth provider: okta, google, azure, hmac")
	f.StringVar(&mcpFlags.issuer, "issuer", "", "OAuth issuer URL (required with --oauth)")
	f.StringVar(&mcpFlags.audience, "audience", "", "OAuth audience (required with --oauth)")
	f.StringVar(&mcpFlags.serverURL, "server-url", "", "public base URL for OAuth callbacks")
	f.DurationVar(&mcpFlags.sessionTimeout, "session-timeout", 30*time.Minute, "HTTP session timeout")
	_ = viper.BindPFlag("mcp-transport", f.Lookup("transport"))
	_ = viper.BindPFlag("mcp-port", f.Lookup("port"))
	rootCmd.AddCommand(mcpCmd)
}

// ExecuteMCP runs the mcp command with the process arguments, for the
// standalone dynoteam-mcp binary.
func ExecuteMCP() error {
	rootCmd.SetArgs(append([]string{mcpCmd.Name()}, os.Args[1:]...))
	return rootCmd.Execute()
}

func mcpCommand(cmd *cobra.Command, _ []string) error {
	log.Println("Starting Dynoteam MCP Server...")

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	// Create handlers with configuration
	handlers := dynomcp.NewHandlers().
		WithTeamPath(teamPath(nil)).
		WithVerbose(isVerbose()).
		WithLogOutput(cmd.ErrOrStderr())

	// Build server config
	cfg := &dynomcp.ServerConfig{
		Version:        version,
		Logger:         logger,
		Handlers:       handlers,
		Port:           viper.GetInt("mcp-port"),
		SessionTimeout: mcpFlags.sessionTimeout,
	}

	if mcpFlags.oauth {
		if mcpFlags.issuer == "" || mcpFlags.audience == "" {
			return fmt.Errorf("--issuer and --audience are required with --oauth")
		}
		cfg.OAuth = &dynomcp.OAuthConfig{
			Provider:  mcpFlags.provider,
			Issuer:    mcpFlags.issuer,
			Audience:  mcpFlags.audience,
			ServerURL: mcpFlags.serverURL,
		}
	}

	server := dynomcp.NewServer(cfg)

	transport := viper.GetString("mcp-transport")
	log.Printf("Starting MCP server with %s transport...", transport)
	switch transport {
	case "stdio":
		err = server.ServeStdio(cmd.Context())
	case "http":
		if cfg.OAuth != nil {
			err = server.ServeHTTPWithOAuth(cmd.Context())
		} else {
			err = server.ServeHTTP(cmd.Context())
		}
	default:
		return fmt.Errorf("unknown transport: %s (use: stdio, http)", transport)
	}

	if err != nil {
		return err
	}

	log.Println("Server shutdown complete")
	return nil
}
