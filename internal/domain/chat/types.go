package chat

import "context"

const (
	// DefaultSummary is the sentinel the client sends on the first turn.
	DefaultSummary = "No previous context."
	// DefaultTheme is used when the client does not pick a persona theme.
	DefaultTheme = "General"
)

// Turn is the immutable input to one chat resolution.
type Turn struct {
	UserMessage string   `json:"user_message"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ChatSummary string   `json:"chat_summary"`
	Theme       string   `json:"theme"`
}

func (t *Turn) normalize() {
	if t.ChatSummary == "" {
		t.ChatSummary = DefaultSummary
	}
	if t.Theme == "" {
		t.Theme = DefaultTheme
	}
}

// Reply is the six-field structured contract rendered directly by the client.
type Reply struct {
	EnglishText  string `json:"english_text"`
	JapaneseText string `json:"japanese_text"`
	Summary      string `json:"summary"`
	HexColor     string `json:"hex_color"`
	AvatarState  string `json:"avatar_state"`
	LocationName string `json:"location_name"`
}

// WeatherSnapshot holds current conditions plus a two-day daily forecast.
// It is recomputed for every turn; the values also steer the model's mood
// color and avatar choice, so stale data would leak into the reply.
type WeatherSnapshot struct {
	Current map[string]any `json:"current"`
	Daily   map[string]any `json:"daily"`
}

// Empty reports whether no weather context is available for the turn.
func (w WeatherSnapshot) Empty() bool {
	return len(w.Current) == 0 && len(w.Daily) == 0
}

// GenerationInput is the full context block handed to the reply generator.
type GenerationInput struct {
	Message      string
	Summary      string
	LocationName string
	Latitude     float64
	Longitude    float64
	Theme        string
	Weather      WeatherSnapshot
}

// ReplyGenerator invokes the model in strict-JSON mode and returns its raw
// text output.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, in GenerationInput) (string, error)
}

// WeatherClient fetches the snapshot for coordinates. Failures degrade to an
// empty snapshot upstream; they must never abort the turn.
type WeatherClient interface {
	Fetch(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}
