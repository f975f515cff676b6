package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/vire-markets/internal/models"
	"github.com/bobmcallan/vire-markets/internal/popup"
	"github.com/bobmcallan/vire-markets/internal/render"
	"github.com/bobmcallan/vire-markets/internal/scheduler"
)

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestVersionHandler_ReturnsJSON(t *testing.T) {
	handler := NewVersionHandler(nil)

	req := httptest.NewRequest("GET", "/api/version", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if _, ok := body["version"]; !ok {
		t.Error("expected version field in response")
	}
	if _, ok := body["build"]; !ok {
		t.Error("expected build field in response")
	}
	if _, ok := body["git_commit"]; !ok {
		t.Error("expected git_commit field in response")
	}
}

func TestVersionHandler_RejectsNonGET(t *testing.T) {
	handler := NewVersionHandler(nil)

	req := httptest.NewRequest("DELETE", "/api/version", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestRequireMethod_Matches(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	ok := RequireMethod(w, req, "GET")
	if !ok {
		t.Error("expected RequireMethod to return true for matching method")
	}
}

func TestRequireMethod_Mismatch(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()

	ok := RequireMethod(w, req, "GET")
	if ok {
		t.Error("expected RequireMethod to return false for mismatching method")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	WriteJSON(w, http.StatusCreated, data)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", w.Code)
	}

	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["key"] != "value" {
		t.Errorf("expected key=value, got key=%s", body["key"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["error"] != "something went wrong" {
		t.Errorf("expected error message 'something went wrong', got %s", body["error"])
	}
	if body["status"] != "error" {
		t.Errorf("expected status 'error', got %s", body["status"])
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()

	var v themeRequest
	if !DecodeJSON(w, req, &v) {
		t.Fatal("expected empty body to decode")
	}
	if v.Theme != "" {
		t.Errorf("expected zero value, got %s", v.Theme)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader("{nope"))
	w := httptest.NewRecorder()

	var v themeRequest
	if DecodeJSON(w, req, &v) {
		t.Fatal("expected malformed body to fail")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// --- Dashboard Handler Tests ---

type fakeService struct {
	table   *render.Table
	sort    models.SortState
	params  models.FetchParams
	theme   models.Theme
	hovered []popup.HoverEvent
	hoverFn func(popup.HoverEvent) (*popup.Popup, error)
	leaves  int
}

func newFakeService() *fakeService {
	return &fakeService{
		table:  &render.Table{Status: render.Status{Label: "Last Updated: 12:00:00"}},
		sort:   models.DefaultSortState(),
		params: models.FetchParams{DrawdownPeriod: "1y", ChangePeriod: "1d"},
		theme:  models.ThemeLight,
	}
}

func (f *fakeService) Table() *render.Table { return f.table }

func (f *fakeService) Sort(c models.Column) (models.SortState, error) {
	if !c.Valid() {
		return models.SortState{}, fmt.Errorf("unknown sort column %q", c)
	}
	f.sort = f.sort.Select(c)
	return f.sort, nil
}

func (f *fakeService) Params() models.FetchParams { return f.params }

func (f *fakeService) SetPeriods(p models.FetchParams) (models.FetchParams, error) {
	if p.DrawdownPeriod != "" && !models.IsValidPeriod(p.DrawdownPeriod) {
		return f.params, fmt.Errorf("invalid period: %s", p.DrawdownPeriod)
	}
	if p.DrawdownPeriod != "" {
		f.params.DrawdownPeriod = p.DrawdownPeriod
	}
	if p.ChangePeriod != "" {
		f.params.ChangePeriod = p.ChangePeriod
	}
	return f.params, nil
}

func (f *fakeService) Hover(_ context.Context, ev popup.HoverEvent) (*popup.Popup, error) {
	f.hovered = append(f.hovered, ev)
	if f.hoverFn != nil {
		return f.hoverFn(ev)
	}
	return &popup.Popup{Symbol: ev.Symbol, View: popup.ViewRSI, Overlay: popup.Overlay{Text: "RSI: 25.00", Class: "positive"}}, nil
}

func (f *fakeService) Leave() { f.leaves++ }

func (f *fakeService) Theme(context.Context) models.Theme { return f.theme }

func (f *fakeService) ToggleTheme(context.Context) models.Theme {
	if f.theme == models.ThemeLight {
		f.theme = models.ThemeDark
	} else {
		f.theme = models.ThemeLight
	}
	return f.theme
}

func (f *fakeService) SetTheme(_ context.Context, t models.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	f.theme = t
	return nil
}

type fakeRefresher struct {
	manual   int
	periods  int
	visible  []bool
	triggerE error
}

func (f *fakeRefresher) Manual() error {
	f.manual++
	return f.triggerE
}

func (f *fakeRefresher) PeriodsChanged() error {
	f.periods++
	return f.triggerE
}

func (f *fakeRefresher) SetVisible(v bool) error {
	f.visible = append(f.visible, v)
	return nil
}

func (f *fakeRefresher) Status() scheduler.Status {
	return scheduler.Status{Visible: true, Interval: "1m0s"}
}

func newTestDashboardHandler() (*DashboardHandler, *fakeService, *fakeRefresher) {
	svc := newFakeService()
	ref := &fakeRefresher{}
	return NewDashboardHandler(nil, svc, ref), svc, ref
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestDashboardHandler_Table(t *testing.T) {
	handler, _, _ := newTestDashboardHandler()

	req := httptest.NewRequest("GET", "/api/table", nil)
	w := httptest.NewRecorder()
	handler.HandleTable(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	status, ok := body["status"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected status object, got %v", body["status"])
	}
	if status["label"] != "Last Updated: 12:00:00" {
		t.Errorf("unexpected status label %v", status["label"])
	}
}

func TestDashboardHandler_RefreshStarted(t *testing.T) {
	handler, _, ref := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/refresh", nil)
	w := httptest.NewRecorder()
	handler.HandleRefresh(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
	if ref.manual != 1 {
		t.Errorf("expected one manual refresh, got %d", ref.manual)
	}
	if body := decodeBody(t, w); body["status"] != "started" {
		t.Errorf("expected started, got %v", body["status"])
	}
}

func TestDashboardHandler_RefreshQueued(t *testing.T) {
	handler, _, ref := newTestDashboardHandler()
	ref.triggerE = scheduler.ErrRefreshQueued

	req := httptest.NewRequest("POST", "/api/refresh", nil)
	w := httptest.NewRecorder()
	handler.HandleRefresh(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "queued" {
		t.Errorf("expected queued, got %v", body["status"])
	}
}

func TestDashboardHandler_RefreshStopped(t *testing.T) {
	handler, _, ref := newTestDashboardHandler()
	ref.triggerE = scheduler.ErrStopped

	req := httptest.NewRequest("POST", "/api/refresh", nil)
	w := httptest.NewRecorder()
	handler.HandleRefresh(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestDashboardHandler_RefreshRejectsGET(t *testing.T) {
	handler, _, ref := newTestDashboardHandler()

	req := httptest.NewRequest("GET", "/api/refresh", nil)
	w := httptest.NewRecorder()
	handler.HandleRefresh(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
	if ref.manual != 0 {
		t.Error("GET must not trigger a refresh")
	}
}

func TestDashboardHandler_Sort(t *testing.T) {
	handler, svc, _ := newTestDashboardHandler()

	for i, want := range []models.Direction{models.Ascending, models.Descending} {
		req := httptest.NewRequest("POST", "/api/sort", strings.NewReader(`{"column":"rsi14"}`))
		w := httptest.NewRecorder()
		handler.HandleSort(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("click %d: expected status 200, got %d", i, w.Code)
		}
		if svc.sort.Direction != want {
			t.Errorf("click %d: expected %s, got %s", i, want, svc.sort.Direction)
		}
	}
}

func TestDashboardHandler_SortUnknownColumn(t *testing.T) {
	handler, _, _ := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/sort", strings.NewReader(`{"column":"volume"}`))
	w := httptest.NewRecorder()
	handler.HandleSort(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestDashboardHandler_PeriodsTriggerRefresh(t *testing.T) {
	handler, svc, ref := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/periods", strings.NewReader(`{"drawdown_period":"3m"}`))
	w := httptest.NewRecorder()
	handler.HandleSetPeriods(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
	if svc.params.DrawdownPeriod != "3m" {
		t.Errorf("expected drawdown period 3m, got %s", svc.params.DrawdownPeriod)
	}
	if ref.periods != 1 {
		t.Errorf("expected one periods refresh, got %d", ref.periods)
	}
}

func TestDashboardHandler_PeriodsInvalid(t *testing.T) {
	handler, _, ref := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/periods", strings.NewReader(`{"drawdown_period":"10y"}`))
	w := httptest.NewRecorder()
	handler.HandleSetPeriods(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if ref.periods != 0 {
		t.Error("invalid period must not trigger a refresh")
	}
}

func TestDashboardHandler_Visibility(t *testing.T) {
	handler, _, ref := newTestDashboardHandler()

	for _, body := range []string{`{"hidden":true}`, `{"hidden":false}`} {
		req := httptest.NewRequest("POST", "/api/visibility", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.HandleVisibility(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
	}

	if len(ref.visible) != 2 || ref.visible[0] || !ref.visible[1] {
		t.Errorf("expected visibility [false true], got %v", ref.visible)
	}
}

func TestDashboardHandler_Hover(t *testing.T) {
	handler, svc, _ := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/popup/hover", strings.NewReader(
		`{"symbol":"AAPL","zone":"rsi","anchor":{"top":100,"left":20,"bottom":120,"right":80},"viewport":{"width":1024,"height":768}}`))
	w := httptest.NewRecorder()
	handler.HandleHover(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if len(svc.hovered) != 1 || svc.hovered[0].Zone != models.ZoneRSI || svc.hovered[0].Anchor.Bottom != 120 {
		t.Errorf("unexpected hover event %+v", svc.hovered)
	}

	body := decodeBody(t, w)
	if body["state"] != string(popup.StateShowing) {
		t.Errorf("expected showing, got %v", body["state"])
	}
	p := body["popup"].(map[string]interface{})
	overlay := p["overlay"].(map[string]interface{})
	if overlay["text"] != "RSI: 25.00" || overlay["class"] != "positive" {
		t.Errorf("unexpected overlay %v", overlay)
	}
}

func TestDashboardHandler_HoverErrors(t *testing.T) {
	handler, svc, _ := newTestDashboardHandler()

	svc.hoverFn = func(popup.HoverEvent) (*popup.Popup, error) {
		return nil, fmt.Errorf("%w: %q", popup.ErrUnknownZone, "price")
	}
	req := httptest.NewRequest("POST", "/api/popup/hover", strings.NewReader(`{"symbol":"AAPL","zone":"price"}`))
	w := httptest.NewRecorder()
	handler.HandleHover(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown zone: expected status 400, got %d", w.Code)
	}

	svc.hoverFn = func(popup.HoverEvent) (*popup.Popup, error) {
		return nil, fmt.Errorf("%w: %s", popup.ErrNotHoverable, "BAD")
	}
	req = httptest.NewRequest("POST", "/api/popup/hover", strings.NewReader(`{"symbol":"BAD","zone":"rsi"}`))
	w = httptest.NewRecorder()
	handler.HandleHover(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("errored row: expected status 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["state"] != string(popup.StateIdle) {
		t.Errorf("errored row: expected idle, got %v", body["state"])
	}
}

func TestDashboardHandler_Leave(t *testing.T) {
	handler, svc, _ := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/popup/leave", nil)
	w := httptest.NewRecorder()
	handler.HandleLeave(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if svc.leaves != 1 {
		t.Errorf("expected one leave, got %d", svc.leaves)
	}
}

func TestDashboardHandler_Theme(t *testing.T) {
	handler, svc, _ := newTestDashboardHandler()

	req := httptest.NewRequest("POST", "/api/theme", nil)
	w := httptest.NewRecorder()
	handler.HandleSetTheme(w, req)
	if body := decodeBody(t, w); body["theme"] != "dark" {
		t.Errorf("expected toggle to dark, got %v", body["theme"])
	}

	req = httptest.NewRequest("POST", "/api/theme", strings.NewReader(`{"theme":"light"}`))
	w = httptest.NewRecorder()
	handler.HandleSetTheme(w, req)
	if svc.theme != models.ThemeLight {
		t.Errorf("expected light, got %s", svc.theme)
	}

	req = httptest.NewRequest("POST", "/api/theme", strings.NewReader(`{"theme":"sepia"}`))
	w = httptest.NewRecorder()
	handler.HandleSetTheme(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/theme", nil)
	w = httptest.NewRecorder()
	handler.HandleGetTheme(w, req)
	if body := decodeBody(t, w); body["theme"] != "light" {
		t.Errorf("expected light, got %v", body["theme"])
	}
}

// --- Page Handler Tests ---

func TestPageHandler_ServeDashboard(t *testing.T) {
	svc := newFakeService()
	svc.table = render.Render(render.Input{
		Symbols: []string{"SPY", "^VIX"},
		Market:  models.MarketSnapshot{},
		Sort:    models.DefaultSortState(),
	})
	svc.table.Status = render.Status{Label: "Last Updated: 12:00:00"}
	handler := NewPageHandler(nil, false, svc)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Market Overview", "Loading or unavailable...", "^VIX", "Last Updated: 12:00:00"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestPageHandler_UnknownPath(t *testing.T) {
	handler := NewPageHandler(nil, false, newFakeService())

	req := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()
	handler.ServeDashboard(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestPageHandler_StaticTraversal(t *testing.T) {
	handler := NewPageHandler(nil, false, newFakeService())

	req := httptest.NewRequest("GET", "/static/../../go.mod", nil)
	w := httptest.NewRecorder()
	handler.StaticFileHandler(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
