package mcp

import (
	"context"

	"github.com/bobmcallan/vire-markets/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VersionTool returns the mcp.Tool definition for the get_version tool.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get vire-markets version. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns the service version.
func VersionToolHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]config.VersionInfo{
			"vire_markets": config.GetVersionInfo(),
		}), nil
	}
}
