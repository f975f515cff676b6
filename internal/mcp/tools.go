package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-markets/internal/client"
	"github.com/bobmcallan/vire-markets/internal/dashboard"
	"github.com/bobmcallan/vire-markets/internal/models"
	"github.com/bobmcallan/vire-markets/internal/popup"
	"github.com/bobmcallan/vire-markets/internal/render"
	"github.com/bobmcallan/vire-markets/internal/scheduler"
	"github.com/bobmcallan/vire-markets/internal/state"
)

// Session is the dashboard session as seen by the MCP tools.
type Session interface {
	Table() *render.Table
	Sort(column models.Column) (models.SortState, error)
	SetPeriods(p models.FetchParams) (models.FetchParams, error)
	Chart(ctx context.Context, symbol string, kind popup.ViewKind) (*popup.ChartSpec, popup.Overlay, error)
	LastReport() state.MergeReport
}

// Refresher is the refresh scheduler as seen by the MCP tools.
type Refresher interface {
	RefreshAndWait(ctx context.Context, reason string) error
	PeriodsChanged() error
	Status() scheduler.Status
}

var toolNames = []string{"get_dashboard", "refresh_dashboard", "sort_dashboard", "set_periods", "get_chart"}

var chartViews = []string{
	string(popup.ViewRelativePerf),
	string(popup.ViewRSI),
	string(popup.ViewEMAShort),
	string(popup.ViewEMALong),
	string(popup.ViewDrawdown),
}

// RegisterTools registers the dashboard tools and returns how many were added.
func RegisterTools(s *server.MCPServer, session Session, refresher Refresher) int {
	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Get the current market dashboard: market overview and assets grouped by type, with formatted metrics, stale and error flags, and the last-updated status."),
	), getDashboardHandler(session))

	s.AddTool(mcp.NewTool("refresh_dashboard",
		mcp.WithDescription("Fetch fresh data from the analytics backend, then return the refreshed dashboard and the merge report."),
	), refreshDashboardHandler(session, refresher))

	s.AddTool(mcp.NewTool("sort_dashboard",
		mcp.WithDescription("Sort the asset section by a column. Selecting the current column again toggles the direction. Assets stay grouped by type unless sorting by type."),
		mcp.WithString("column", mcp.Required(), mcp.Enum(columnNames()...), mcp.Description("Column to sort by")),
	), sortDashboardHandler(session))

	s.AddTool(mcp.NewTool("set_periods",
		mcp.WithDescription("Change the drawdown and daily-change periods and refresh the dashboard."),
		mcp.WithString("drawdown_period", mcp.Enum(models.Periods...), mcp.Description("Drawdown lookback period")),
		mcp.WithString("change_period", mcp.Enum(models.Periods...), mcp.Description("Price change period")),
	), setPeriodsHandler(session, refresher))

	s.AddTool(mcp.NewTool("get_chart",
		mcp.WithDescription("Get the chart data and overlay text for one symbol and chart view."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Market or asset symbol")),
		mcp.WithString("view", mcp.Required(), mcp.Enum(chartViews...), mcp.Description("Chart view")),
	), getChartHandler(session))

	return len(toolNames)
}

func columnNames() []string {
	names := make([]string, len(models.SortableColumns))
	for i, c := range models.SortableColumns {
		names[i] = string(c)
	}
	return names
}

// dashboardRow is the compact row shape returned to MCP clients.
type dashboardRow struct {
	Kind   render.RowKind    `json:"kind"`
	Symbol string            `json:"symbol,omitempty"`
	Label  string            `json:"label,omitempty"`
	Stale  bool              `json:"stale,omitempty"`
	Error  bool              `json:"error,omitempty"`
	Cells  map[string]string `json:"cells,omitempty"`
}

type dashboardView struct {
	Status render.Status   `json:"status"`
	Sort   []render.Header `json:"sorted_by,omitempty"`
	Rows   []dashboardRow  `json:"rows"`
}

func compactTable(t *render.Table) dashboardView {
	v := dashboardView{Status: t.Status, Rows: make([]dashboardRow, 0, len(t.Rows))}
	for _, h := range t.Headers {
		if h.Indicator != "" {
			v.Sort = append(v.Sort, h)
		}
	}
	for _, r := range t.Rows {
		row := dashboardRow{Kind: r.Kind, Symbol: r.Symbol, Label: r.Label, Stale: r.Stale, Error: r.Error}
		if len(r.Cells) > 0 {
			row.Cells = make(map[string]string, len(r.Cells))
			for _, c := range r.Cells {
				if c.Sparkline != nil {
					continue
				}
				row.Cells[c.Key] = c.Text
			}
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func getDashboardHandler(session Session) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(compactTable(session.Table())), nil
	}
}

func refreshDashboardHandler(session Session, refresher Refresher) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := refresher.RefreshAndWait(ctx, "mcp"); err != nil {
			return errorResult(fmt.Sprintf("Error: refresh failed: %s", client.Message(err))), nil
		}
		return jsonResult(map[string]interface{}{
			"dashboard": compactTable(session.Table()),
			"merge":     session.LastReport(),
		}), nil
	}
}

func sortDashboardHandler(session Session) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		column := r.GetString("column", "")
		if column == "" {
			return errorResult("Error: column parameter is required"), nil
		}
		if _, err := session.Sort(models.Column(column)); err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(compactTable(session.Table())), nil
	}
}

func setPeriodsHandler(session Session, refresher Refresher) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := session.SetPeriods(models.FetchParams{
			DrawdownPeriod: r.GetString("drawdown_period", ""),
			ChangePeriod:   r.GetString("change_period", ""),
		})
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		status := "refresh started"
		if err := refresher.PeriodsChanged(); errors.Is(err, scheduler.ErrRefreshQueued) {
			status = "refresh queued"
		} else if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]interface{}{"params": p, "status": status}), nil
	}
}

func getChartHandler(session Session) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol := r.GetString("symbol", "")
		view := popup.ViewKind(r.GetString("view", ""))
		if symbol == "" || view == "" {
			return errorResult("Error: symbol and view parameters are required"), nil
		}

		spec, overlay, err := session.Chart(ctx, symbol, view)
		switch {
		case errors.Is(err, popup.ErrChartData):
			return jsonResult(map[string]interface{}{"overlay": overlay}), nil
		case err != nil:
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(map[string]interface{}{"overlay": overlay, "chart": spec}), nil
	}
}

var (
	_ Session   = (*dashboard.Coordinator)(nil)
	_ Refresher = (*scheduler.Scheduler)(nil)
)
