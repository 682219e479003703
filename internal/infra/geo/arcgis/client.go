package arcgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer"

// ErrNoMatch is returned when the provider found no candidate for a query.
var ErrNoMatch = errors.New("arcgis: no match")

// Client talks to the ArcGIS World Geocoding REST service. All requests run
// behind a circuit breaker so a flapping provider trips fast and the location
// resolution chain can degrade to its next tier.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewClient builds a geocoding client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "arcgis",
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

// Forward geocodes a place name to coordinates. The requested name is kept as
// the display name; forward candidates carry full street-level labels that
// read poorly in conversation.
func (c *Client) Forward(ctx context.Context, name string) (float64, float64, string, error) {
	values := url.Values{}
	values.Set("f", "json")
	values.Set("singleLine", name)
	values.Set("maxLocations", "1")

	var payload struct {
		Candidates []struct {
			Address  string `json:"address"`
			Location struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"location"`
		} `json:"candidates"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/findAddressCandidates?"+values.Encode(), &payload); err != nil {
		return 0, 0, "", err
	}
	if len(payload.Candidates) == 0 {
		return 0, 0, "", ErrNoMatch
	}

	candidate := payload.Candidates[0]
	return candidate.Location.Y, candidate.Location.X, strings.TrimSpace(name), nil
}

// Reverse geocodes coordinates to a display name using the provider's city
// field when present, otherwise the address parsing heuristic below.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	values := url.Values{}
	values.Set("f", "json")
	values.Set("location", fmt.Sprintf("%f,%f", lon, lat))

	var payload struct {
		Address struct {
			City      string `json:"City"`
			MatchAddr string `json:"Match_addr"`
			LongLabel string `json:"LongLabel"`
		} `json:"address"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/reverseGeocode?"+values.Encode(), &payload); err != nil {
		return "", err
	}
	if payload.Error != nil {
		return "", fmt.Errorf("arcgis: %s", payload.Error.Message)
	}

	address := payload.Address.MatchAddr
	if address == "" {
		address = payload.Address.LongLabel
	}
	return pickDisplayName(payload.Address.City, address), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build geocoding request: %w", err)
	}

	result, err := c.circuit.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("arcgis: unexpected status %d", resp.StatusCode)
		}

		var decoded json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decode geocoding response: %w", err)
		}
		return decoded, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(result.(json.RawMessage), out)
}

// pickDisplayName selects a human display name from a reverse-geocode result.
// The city-level field wins when present. Otherwise the free-text address is
// split on commas; the first segment is the most specific locality and is
// skipped, then the first remaining segment that is non-empty, longer than 3
// characters and not purely numeric is taken. If none qualifies the locality
// segment itself is allowed back in; if still nothing qualifies, the sentinel
// name is returned.
//
// This heuristic is specific to the ArcGIS address format and deliberately
// lives inside this adapter.
func pickDisplayName(city, address string) string {
	if trimmed := strings.TrimSpace(city); trimmed != "" {
		return trimmed
	}
	if strings.TrimSpace(address) == "" {
		return "Unknown Location"
	}

	var parts []string
	for _, part := range strings.Split(address, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	for _, part := range skipFirst(parts) {
		if usableSegment(part) {
			return part
		}
	}
	for _, part := range parts {
		if usableSegment(part) {
			return part
		}
	}
	return "Unknown Location"
}

func skipFirst(parts []string) []string {
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

func usableSegment(part string) bool {
	return len(part) > 3 && !isDigits(part)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
