package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/tenkiguide/backend/internal/domain/chat"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const (
	currentMetrics = "temperature_2m,relative_humidity_2m,is_day,precipitation,weather_code,wind_speed_10m"
	dailyMetrics   = "temperature_2m_max,temperature_2m_min,precipitation_sum,weather_code,wind_speed_10m_max"
)

// Client fetches current conditions plus a two-day daily forecast from
// Open-Meteo. Snapshots are never cached; the caller re-fetches every turn.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewClient builds a weather client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		circuit:    cb,
	}
}

// Fetch retrieves the snapshot for coordinates. Metric sets are kept generic
// (metric name to value) because the model consumes them as context, not as
// typed data.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (chat.WeatherSnapshot, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current", currentMetrics)
	values.Set("daily", dailyMetrics)
	values.Set("forecast_days", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return chat.WeatherSnapshot{}, fmt.Errorf("build weather request: %w", err)
	}

	result, err := c.circuit.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("openmeteo: unexpected status %d", resp.StatusCode)
		}

		var payload struct {
			Current map[string]any `json:"current"`
			Daily   map[string]any `json:"daily"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode weather response: %w", err)
		}
		return chat.WeatherSnapshot{Current: payload.Current, Daily: payload.Daily}, nil
	})
	if err != nil {
		return chat.WeatherSnapshot{}, err
	}
	return result.(chat.WeatherSnapshot), nil
}
