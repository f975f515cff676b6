package mcp

import (
	"net/http"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/config"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewServer creates the MCP server with the dashboard tools registered.
func NewServer(session Session, refresher Refresher) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer(
		"vire-markets",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	RegisterTools(mcpSrv, session, refresher)
	mcpSrv.AddTool(VersionTool(), VersionToolHandler())
	return mcpSrv
}

// NewHandler creates a new MCP handler over the dashboard session.
func NewHandler(session Session, refresher Refresher, logger *common.Logger) *Handler {
	streamable := mcpserver.NewStreamableHTTPServer(NewServer(session, refresher),
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", len(toolNames)+1).
		Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
	}
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
