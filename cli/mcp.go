// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for desktop assistant integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadbook/handlers"
	"github.com/harperreed/leadbook/people"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, store people.Store, version string, logger *log.Logger) error {
	logger.Info("starting MCP server", "version", version)

	server := handlers.NewServer(store, version, logger)
	return server.Run(ctx, &mcp.StdioTransport{})
}
