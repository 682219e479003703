package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "http://ip-api.com/json"

// Client resolves coarse coordinates for an IP address. The resolution
// engine only consults it when neither an explicit mention, summary
// continuity, nor device coordinates produced a location.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an IP geolocation client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Locate looks up coordinates for the given IP.
func (c *Client) Locate(ctx context.Context, ip string) (float64, float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build ip lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("ip lookup: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, fmt.Errorf("decode ip lookup response: %w", err)
	}
	if payload.Status != "success" {
		return 0, 0, fmt.Errorf("ip lookup failed: %s", payload.Message)
	}
	return payload.Lat, payload.Lon, nil
}
