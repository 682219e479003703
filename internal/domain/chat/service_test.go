package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenkiguide/backend/internal/domain/location"
	apperrors "github.com/tenkiguide/backend/pkg/errors"
)

func newServiceUnderTest(resolver LocationResolver, weather WeatherClient, generator ReplyGenerator) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(resolver, weather, generator, logger)
}

func TestChatHappyPathOverridesModelLocationName(t *testing.T) {
	resolver := &stubResolver{resolved: location.Resolved{Latitude: 48.8566, Longitude: 2.3522, DisplayName: "Paris"}}
	weather := &stubWeather{snapshot: WeatherSnapshot{
		Current: map[string]any{"temperature_2m": 21.5},
		Daily:   map[string]any{"temperature_2m_max": []any{24.0, 22.0}},
	}}
	generator := &stubGenerator{raw: `{
		"english_text": "Lovely day in the city!",
		"japanese_text": "いい天気ですね！",
		"summary": "In Paris (travel theme), the user asked about the weather.",
		"hex_color": "#FF5733",
		"avatar_state": "happy",
		"location_name": "model-invented name"
	}`}

	svc := newServiceUnderTest(resolver, weather, generator)
	reply, err := svc.Chat(context.Background(), Turn{UserMessage: "weather in Paris?", Theme: "Travel"}, "203.0.113.9")

	require.NoError(t, err)
	require.Equal(t, "Paris", reply.LocationName)
	require.Equal(t, "happy", reply.AvatarState)
	require.Equal(t, "#FF5733", reply.HexColor)
	require.Equal(t, "203.0.113.9", resolver.lastQuery.ClientIP)
	require.Equal(t, 48.8566, generator.lastInput.Latitude)
	require.Equal(t, "Paris", generator.lastInput.LocationName)
	require.Equal(t, 21.5, generator.lastInput.Weather.Current["temperature_2m"])
}

func TestChatEmptyMessageRejectedBeforeExternalCalls(t *testing.T) {
	resolver := &stubResolver{}
	generator := &stubGenerator{}

	svc := newServiceUnderTest(resolver, &stubWeather{}, generator)
	_, err := svc.Chat(context.Background(), Turn{UserMessage: "   "}, "")

	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
	require.Zero(t, resolver.calls)
	require.Zero(t, generator.calls)
}

func TestChatDefaultsSummaryAndTheme(t *testing.T) {
	resolver := &stubResolver{resolved: location.Resolved{DisplayName: "Vellore"}}
	generator := &stubGenerator{raw: validRawReply}

	svc := newServiceUnderTest(resolver, &stubWeather{}, generator)
	_, err := svc.Chat(context.Background(), Turn{UserMessage: "hello"}, "")

	require.NoError(t, err)
	require.Equal(t, DefaultSummary, resolver.lastQuery.Summary)
	require.Equal(t, DefaultTheme, generator.lastInput.Theme)
}

func TestChatWeatherFailureStillGenerates(t *testing.T) {
	resolver := &stubResolver{resolved: location.Resolved{DisplayName: "Tokyo"}}
	weather := &stubWeather{err: errors.New("provider down")}
	generator := &stubGenerator{raw: validRawReply}

	svc := newServiceUnderTest(resolver, weather, generator)
	reply, err := svc.Chat(context.Background(), Turn{UserMessage: "how cold is it?"}, "")

	require.NoError(t, err)
	require.Equal(t, 1, generator.calls)
	require.True(t, generator.lastInput.Weather.Empty())
	require.Equal(t, "Tokyo", reply.LocationName)
}

func TestChatMalformedModelOutputIsFatal(t *testing.T) {
	resolver := &stubResolver{resolved: location.Resolved{DisplayName: "Tokyo"}}
	generator := &stubGenerator{raw: "I am sorry, I cannot respond in JSON today."}

	svc := newServiceUnderTest(resolver, &stubWeather{}, generator)
	_, err := svc.Chat(context.Background(), Turn{UserMessage: "hello"}, "")

	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "llm_error"))
	require.Contains(t, err.Error(), "Failed to parse AI response")
}

func TestChatGeneratorErrorSurfacesAsLLMError(t *testing.T) {
	resolver := &stubResolver{resolved: location.Resolved{DisplayName: "Tokyo"}}
	generator := &stubGenerator{err: errors.New("quota exhausted")}

	svc := newServiceUnderTest(resolver, &stubWeather{}, generator)
	_, err := svc.Chat(context.Background(), Turn{UserMessage: "hello"}, "")

	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "llm_error"))
}

func TestPingUsesWarmupInput(t *testing.T) {
	generator := &stubGenerator{raw: validRawReply}
	svc := newServiceUnderTest(&stubResolver{}, &stubWeather{}, generator)

	require.NoError(t, svc.Ping(context.Background()))
	require.Equal(t, "ping", generator.lastInput.Message)
	require.Equal(t, "Tokyo", generator.lastInput.LocationName)
}

const validRawReply = `{
	"english_text": "Hi!",
	"japanese_text": "こんにちは！",
	"summary": "In Tokyo (General theme), the user said hello.",
	"hex_color": "#87CEEB",
	"avatar_state": "neutral"
}`

type stubResolver struct {
	resolved  location.Resolved
	lastQuery location.Query
	calls     int
}

func (s *stubResolver) Resolve(_ context.Context, q location.Query) location.Resolved {
	s.calls++
	s.lastQuery = q
	return s.resolved
}

type stubWeather struct {
	snapshot WeatherSnapshot
	err      error
}

func (s *stubWeather) Fetch(_ context.Context, _, _ float64) (WeatherSnapshot, error) {
	if s.err != nil {
		return WeatherSnapshot{}, s.err
	}
	return s.snapshot, nil
}

type stubGenerator struct {
	raw       string
	err       error
	calls     int
	lastInput GenerationInput
}

func (s *stubGenerator) GenerateReply(_ context.Context, in GenerationInput) (string, error) {
	s.calls++
	s.lastInput = in
	if s.err != nil {
		return "", s.err
	}
	return s.raw, nil
}
