package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/config"
	"github.com/bobmcallan/vire-markets/internal/models"
)

const sampleBody = `{
  "market_data": {
    "SPY": {"name": "SPY", "latest_price": 512.34, "daily_change_pct": 0.42, "last_updated": "2026-03-02T15:00:00"},
    "^VIX": {"name": "^VIX", "latest_price": NaN, "rsi14": Infinity}
  },
  "asset_data": {
    "AAPL": {"name": "AAPL", "display_name": "Apple \"NaN\" Inc", "type": "Stock", "latest_price": 190.5, "ema13": -Infinity,
      "sparkline_data": [1.5, NaN, 2.5]}
  },
  "spy_1y_history": {"dates": ["2025-03-03", "2025-03-04"], "values": [100.0, NaN]}
}`

func newTestClient(url string) *DashboardClient {
	return NewDashboardClient(config.APIConfig{
		URL:      url,
		Endpoint: "/api/dashboard-data",
		Timeout:  "5s",
	}, common.NewSilentLogger())
}

func TestFetchDashboard_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/dashboard-data" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.UserAgent(); got != config.UserAgent() {
			t.Errorf("expected User-Agent %q, got %q", config.UserAgent(), got)
		}
		if got := r.URL.Query().Get("drawdown_period"); got != "3m" {
			t.Errorf("expected drawdown_period=3m, got %q", got)
		}
		if got := r.URL.Query().Get("change_period"); got != "1w" {
			t.Errorf("expected change_period=1w, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.FetchDashboard(context.Background(), models.FetchParams{DrawdownPeriod: "3m", ChangePeriod: "1w"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spy := resp.MarketData["SPY"]
	if spy == nil || spy.LatestPrice == nil || *spy.LatestPrice != 512.34 {
		t.Fatalf("expected SPY price 512.34, got %+v", spy)
	}
	vix := resp.MarketData["^VIX"]
	if vix == nil {
		t.Fatal("expected ^VIX entry to decode")
	}
	if vix.LatestPrice != nil {
		t.Errorf("expected NaN price to decode as null, got %v", *vix.LatestPrice)
	}
	if vix.RSI14 != nil {
		t.Errorf("expected Infinity rsi to decode as null, got %v", *vix.RSI14)
	}

	aapl := resp.AssetData["AAPL"]
	if aapl == nil {
		t.Fatal("expected AAPL entry")
	}
	if aapl.DisplayName != `Apple "NaN" Inc` {
		t.Errorf("string contents must be untouched, got %q", aapl.DisplayName)
	}
	if aapl.EMA13 != nil {
		t.Errorf("expected -Infinity to decode as null")
	}
	if aapl.Type != models.AssetTypeStock {
		t.Errorf("expected type Stock, got %s", aapl.Type)
	}
	if len(aapl.SparklineData) != 3 || aapl.SparklineData[1] != nil || *aapl.SparklineData[2] != 2.5 {
		t.Errorf("expected NaN sparkline point to decode as a null gap, got %v", aapl.SparklineData)
	}

	if resp.SPY1YHistory == nil || len(resp.SPY1YHistory.Values) != 2 || resp.SPY1YHistory.Values[1] != nil {
		t.Errorf("unexpected shared history: %+v", resp.SPY1YHistory)
	}
}

func TestFetchDashboard_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"backend warming up"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchDashboard(context.Background(), models.FetchParams{DrawdownPeriod: "1y", ChangePeriod: "1d"})
	if err == nil {
		t.Fatal("expected error for 503")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected code 503, got %d", statusErr.Code)
	}
	if Message(err) != "HTTP error! status: 503" {
		t.Errorf("unexpected message: %s", Message(err))
	}
}

func TestFetchDashboard_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchDashboard(context.Background(), models.FetchParams{DrawdownPeriod: "1y", ChangePeriod: "1d"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestFetchDashboard_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	_, err := c.FetchDashboard(context.Background(), models.FetchParams{DrawdownPeriod: "1y", ChangePeriod: "1d"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if Message(err) != "network error" {
		t.Errorf("unexpected message: %s", Message(err))
	}
}

func TestFetchDashboard_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newTestClient(srv.URL)
	_, err := c.FetchDashboard(ctx, models.FetchParams{DrawdownPeriod: "1y", ChangePeriod: "1d"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestRequestURL(t *testing.T) {
	c := newTestClient("http://analytics:5000")
	got := c.RequestURL(models.FetchParams{DrawdownPeriod: "6m", ChangePeriod: "1m"})
	want := "http://analytics:5000/api/dashboard-data?change_period=1m&drawdown_period=6m"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSanitizeNonFinite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{`{"a": NaN}`, `{"a": null}`},
		{`[Infinity, -Infinity, NaN]`, `[null, null, null]`},
		{`{"s": "NaN"}`, `{"s": "NaN"}`},
		{`{"s": "x\"NaN\"", "v": NaN}`, `{"s": "x\"NaN\"", "v": null}`},
	}
	for _, tt := range tests {
		got := string(sanitizeNonFinite([]byte(tt.in)))
		if got != tt.want {
			t.Errorf("sanitize(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMessage_Fallback(t *testing.T) {
	err := errors.New("boom")
	if Message(err) != "boom" {
		t.Errorf("expected passthrough message, got %s", Message(err))
	}
	if !strings.Contains((&NetworkError{Err: err}).Error(), "boom") {
		t.Error("expected NetworkError to include cause")
	}
}
