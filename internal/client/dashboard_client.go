package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/config"
	"github.com/bobmcallan/vire-markets/internal/models"
)

// maxResponseBytes bounds the decoded body; one-year histories for every
// asset make the payload a few megabytes.
const maxResponseBytes = 32 << 20

// DashboardClient fetches dashboard data from the analytics server.
type DashboardClient struct {
	baseURL    string
	endpoint   string
	httpClient *http.Client
	logger     *common.Logger
}

// NewDashboardClient creates a client for the configured analytics endpoint.
func NewDashboardClient(cfg config.APIConfig, logger *common.Logger) *DashboardClient {
	return &DashboardClient{
		baseURL:    cfg.URL,
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:     logger,
	}
}

// RequestURL builds the endpoint URL for the given periods.
// GET {endpoint}?drawdown_period={p}&change_period={p}
func (c *DashboardClient) RequestURL(params models.FetchParams) string {
	q := url.Values{}
	q.Set("drawdown_period", params.DrawdownPeriod)
	q.Set("change_period", params.ChangePeriod)
	return c.baseURL + c.endpoint + "?" + q.Encode()
}

// FetchDashboard performs one poll of the analytics endpoint.
// Errors are *NetworkError, *HTTPStatusError or wrap ErrMalformedResponse.
func (c *DashboardClient) FetchDashboard(ctx context.Context, params models.FetchParams) (*models.DashboardResponse, error) {
	start := time.Now()
	reqURL := c.RequestURL(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var result models.DashboardResponse
	if err := json.Unmarshal(sanitizeNonFinite(body), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.logger.Debug().
		Str("url", reqURL).
		Int("market", len(result.MarketData)).
		Int("assets", len(result.AssetData)).
		Str("elapsed", time.Since(start).String()).
		Msg("Dashboard data fetched")

	return &result, nil
}
