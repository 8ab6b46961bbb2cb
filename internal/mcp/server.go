package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      PlayerResolver
	AuthEnabled   bool
	DefaultPlayer string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	return NewServerWithHandler(cfg, NewHandler(cfg.Services, cfg.Logger))
}

// NewServerWithHandler is NewServer for callers that share one Handler
// with the JSON-RPC transport.
func NewServerWithHandler(cfg Config, h *Handler) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "stardust",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Each call wraps the previous handler, so the player middleware added
	// last runs first and the traffic log sees the resolved player.
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))
	// Stdio is a local single-player session, so it never authenticates.
	if cfg.AuthEnabled && cfg.TransportMode != "stdio" {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultPlayer))
	}

	registerTools(server, h)

	return server
}
