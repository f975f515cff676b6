package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/dashboard"
	"github.com/bobmcallan/vire-markets/internal/models"
	"github.com/bobmcallan/vire-markets/internal/popup"
	"github.com/bobmcallan/vire-markets/internal/render"
	"github.com/bobmcallan/vire-markets/internal/scheduler"
)

// DashboardService is the dashboard session the event handlers dispatch to.
type DashboardService interface {
	Table() *render.Table
	Sort(column models.Column) (models.SortState, error)
	Params() models.FetchParams
	SetPeriods(p models.FetchParams) (models.FetchParams, error)
	Hover(ctx context.Context, ev popup.HoverEvent) (*popup.Popup, error)
	Leave()
	Theme(ctx context.Context) models.Theme
	ToggleTheme(ctx context.Context) models.Theme
	SetTheme(ctx context.Context, t models.Theme) error
}

// RefreshControl is the refresh scheduler as seen by the event handlers.
type RefreshControl interface {
	Manual() error
	PeriodsChanged() error
	SetVisible(visible bool) error
	Status() scheduler.Status
}

// DashboardHandler serves the dashboard event API.
type DashboardHandler struct {
	logger    *common.Logger
	service   DashboardService
	refresher RefreshControl
}

// NewDashboardHandler creates a new dashboard event handler.
func NewDashboardHandler(logger *common.Logger, service DashboardService, refresher RefreshControl) *DashboardHandler {
	return &DashboardHandler{
		logger:    logger,
		service:   service,
		refresher: refresher,
	}
}

// HandleTable serves GET /api/table.
func (h *DashboardHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, h.service.Table())
}

// HandleStatus serves GET /api/status.
func (h *DashboardHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, h.refresher.Status())
}

// HandleRefresh serves POST /api/refresh, the manual refresh control.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.writeTrigger(w, h.refresher.Manual())
}

func (h *DashboardHandler) writeTrigger(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		WriteJSON(w, http.StatusAccepted, map[string]interface{}{"status": "started", "scheduler": h.refresher.Status()})
	case errors.Is(err, scheduler.ErrRefreshQueued):
		WriteJSON(w, http.StatusAccepted, map[string]interface{}{"status": "queued", "scheduler": h.refresher.Status()})
	case errors.Is(err, scheduler.ErrStopped):
		WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		if h.logger != nil {
			h.logger.Error().Str("error", err.Error()).Msg("failed to trigger refresh")
		}
		WriteError(w, http.StatusInternalServerError, "failed to trigger refresh")
	}
}

type sortRequest struct {
	Column models.Column `json:"column"`
}

// HandleSort serves POST /api/sort.
func (h *DashboardHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req sortRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	s, err := h.service.Sort(req.Column)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"sort": s, "table": h.service.Table()})
}

// HandleGetPeriods serves GET /api/periods.
func (h *DashboardHandler) HandleGetPeriods(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"params": h.service.Params(), "periods": models.Periods})
}

// HandleSetPeriods serves POST /api/periods. A change triggers a refresh.
func (h *DashboardHandler) HandleSetPeriods(w http.ResponseWriter, r *http.Request) {
	var req models.FetchParams
	if !DecodeJSON(w, r, &req) {
		return
	}
	if _, err := h.service.SetPeriods(req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeTrigger(w, h.refresher.PeriodsChanged())
}

type visibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// HandleVisibility serves POST /api/visibility.
func (h *DashboardHandler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var req visibilityRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	err := h.refresher.SetVisible(!req.Hidden)
	if err != nil && !errors.Is(err, scheduler.ErrRefreshQueued) {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, h.refresher.Status())
}

// HandleHover serves POST /api/popup/hover.
func (h *DashboardHandler) HandleHover(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var ev popup.HoverEvent
	if !DecodeJSON(w, r, &ev) {
		return
	}
	p, err := h.service.Hover(r.Context(), ev)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, map[string]interface{}{"state": popup.StateShowing, "popup": p})
	case errors.Is(err, popup.ErrUnknownZone):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, popup.ErrNotHoverable):
		WriteJSON(w, http.StatusOK, map[string]interface{}{"state": popup.StateIdle})
	default:
		if h.logger != nil {
			h.logger.Error().Str("symbol", ev.Symbol).Str("error", err.Error()).Msg("failed to build popup")
		}
		WriteError(w, http.StatusInternalServerError, "failed to build popup")
	}
}

// HandleLeave serves POST /api/popup/leave.
func (h *DashboardHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.service.Leave()
	WriteJSON(w, http.StatusOK, map[string]interface{}{"state": popup.StateIdle})
}

type themeRequest struct {
	Theme models.Theme `json:"theme"`
}

// HandleGetTheme serves GET /api/theme.
func (h *DashboardHandler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, themeRequest{Theme: h.service.Theme(r.Context())})
}

// HandleSetTheme serves POST /api/theme. A request without a theme toggles.
func (h *DashboardHandler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Theme == "" {
		WriteJSON(w, http.StatusOK, themeRequest{Theme: h.service.ToggleTheme(r.Context())})
		return
	}
	if err := h.service.SetTheme(r.Context(), req.Theme); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, req)
}

var _ DashboardService = (*dashboard.Coordinator)(nil)
