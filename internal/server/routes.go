package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	dash := s.app.DashboardHandler

	// Dashboard page (HTML template)
	mux.HandleFunc("/", s.app.PageHandler.ServeDashboard)

	// Static files (CSS, JS)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// Dashboard events
	mux.HandleFunc("/api/table", dash.HandleTable)
	mux.HandleFunc("/api/status", dash.HandleStatus)
	mux.HandleFunc("/api/refresh", dash.HandleRefresh)
	mux.HandleFunc("/api/sort", dash.HandleSort)
	mux.HandleFunc("/api/visibility", dash.HandleVisibility)
	mux.HandleFunc("/api/popup/hover", dash.HandleHover)
	mux.HandleFunc("/api/popup/leave", dash.HandleLeave)
	mux.Handle("/api/periods", RouteSetting(dash.HandleGetPeriods, dash.HandleSetPeriods))
	mux.Handle("/api/theme", RouteSetting(dash.HandleGetTheme, dash.HandleSetTheme))

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
