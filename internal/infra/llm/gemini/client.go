package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	genai "google.golang.org/genai"

	"github.com/tenkiguide/backend/internal/domain/chat"
)

//go:embed system_prompt.txt
var systemPrompt string

// ErrEmptyResponse is returned when the model produced no candidates.
var ErrEmptyResponse = errors.New("gemini: empty model response")

// Client wraps the official genai client for the two calls this service
// makes: the strict-JSON reply generation and the location classifier.
type Client struct {
	cli         *genai.Client
	model       string
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewClient builds a Gemini-backed client.
func NewClient(ctx context.Context, apiKey, model string, callTimeout time.Duration, logger *slog.Logger) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		cli:         cli,
		model:       model,
		callTimeout: callTimeout,
		logger:      logger.With("component", "gemini.client"),
	}, nil
}

// GenerateReply assembles the context block and invokes the model with
// application/json response enforcement. The raw text is returned untouched;
// parsing and sanitation belong to the chat domain.
func (c *Client) GenerateReply(ctx context.Context, in chat.GenerationInput) (string, error) {
	prompt := c.buildReplyPrompt(in)

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// ClassifyLocation asks the model whether the message names a place. The
// model answers in plain text, so the brittle output is run through
// sanitizeClassification before anyone trusts it.
func (c *Client) ClassifyLocation(ctx context.Context, message string) (string, bool, error) {
	prompt := fmt.Sprintf(`Analyze this message: %q
If the user mentioned a specific city, country, or location (even if not explicitly for weather), return ONLY the location name (e.g., 'Tokyo').
If no specific location is mentioned, return 'None'.
Do not output markdown or json, just the plain text string.`, message)

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", false, fmt.Errorf("classify location: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false, ErrEmptyResponse
	}

	name, ok := sanitizeClassification(resp.Candidates[0].Content.Parts[0].Text)
	return name, ok, nil
}

func (c *Client) buildReplyPrompt(in chat.GenerationInput) string {
	current := formatWeatherMap(in.Weather.Current)
	daily := formatWeatherMap(in.Weather.Daily)

	var b strings.Builder
	b.WriteString("System: ")
	b.WriteString(systemPrompt)
	b.WriteString("\n\nContext:\n")
	fmt.Fprintf(&b, "- User Selected Theme: %s\n", in.Theme)
	fmt.Fprintf(&b, "- Current Location: %s (Lat: %v, Lon: %v)\n", in.LocationName, in.Latitude, in.Longitude)
	fmt.Fprintf(&b, "- Current Weather Data: %s\n", current)
	fmt.Fprintf(&b, "- Tomorrow's Forecast: %s\n", daily)
	fmt.Fprintf(&b, "- Previous Chat Summary: %s\n", in.Summary)
	fmt.Fprintf(&b, "\nUser Message: %s\n", in.Message)
	return b.String()
}

func formatWeatherMap(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// sanitizeClassification applies the safety guard against the model returning
// explanatory prose instead of a bare place name: anything containing the
// "None" sentinel or longer than 50 characters counts as "no location".
func sanitizeClassification(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if strings.Contains(text, "None") {
		return "", false
	}
	if len(text) > 50 {
		return "", false
	}
	return text, true
}
