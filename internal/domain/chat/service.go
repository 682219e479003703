package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tenkiguide/backend/internal/domain/location"
	apperrors "github.com/tenkiguide/backend/pkg/errors"
)

// Service exposes the chat turn flow.
type Service interface {
	Chat(ctx context.Context, turn Turn, clientIP string) (Reply, error)
	Ping(ctx context.Context) error
}

// LocationResolver grounds a turn in exactly one location.
type LocationResolver interface {
	Resolve(ctx context.Context, q location.Query) location.Resolved
}

type service struct {
	resolver  LocationResolver
	weather   WeatherClient
	generator ReplyGenerator
	logger    *slog.Logger
}

// NewService wires the chat orchestration domain.
func NewService(resolver LocationResolver, weather WeatherClient, generator ReplyGenerator, logger *slog.Logger) Service {
	return &service{
		resolver:  resolver,
		weather:   weather,
		generator: generator,
		logger:    logger.With("component", "chat.service"),
	}
}

// Chat runs one turn: resolve the grounding location, fetch weather, invoke
// the model in strict-JSON mode, then assemble the reply. The model's own
// idea of the location name is never trusted; the resolved display name is
// authoritative.
func (s *service) Chat(ctx context.Context, turn Turn, clientIP string) (Reply, error) {
	if strings.TrimSpace(turn.UserMessage) == "" {
		return Reply{}, apperrors.Wrap("invalid_input", "user_message cannot be empty", nil)
	}
	turn.normalize()

	resolved := s.resolver.Resolve(ctx, location.Query{
		Message:   turn.UserMessage,
		Summary:   turn.ChatSummary,
		Latitude:  turn.Latitude,
		Longitude: turn.Longitude,
		ClientIP:  clientIP,
	})
	s.logger.Info("location resolved", "name", resolved.DisplayName, "lat", resolved.Latitude, "lon", resolved.Longitude)

	snapshot := s.fetchWeather(ctx, resolved)

	raw, err := s.generator.GenerateReply(ctx, GenerationInput{
		Message:      turn.UserMessage,
		Summary:      turn.ChatSummary,
		LocationName: resolved.DisplayName,
		Latitude:     resolved.Latitude,
		Longitude:    resolved.Longitude,
		Theme:        turn.Theme,
		Weather:      snapshot,
	})
	if err != nil {
		return Reply{}, apperrors.Wrap("llm_error", "model call failed", err)
	}

	reply, err := parseReply(raw)
	if err != nil {
		return Reply{}, apperrors.Wrap("llm_error", "Failed to parse AI response", err)
	}

	reply.LocationName = resolved.DisplayName
	return reply, nil
}

// Ping issues a minimal generation to keep the model path warm.
func (s *service) Ping(ctx context.Context) error {
	_, err := s.generator.GenerateReply(ctx, GenerationInput{
		Message:      "ping",
		LocationName: "Tokyo",
		Latitude:     35.6762,
		Longitude:    139.6503,
		Theme:        "friendly",
	})
	return err
}

func (s *service) fetchWeather(ctx context.Context, resolved location.Resolved) WeatherSnapshot {
	snapshot, err := s.weather.Fetch(ctx, resolved.Latitude, resolved.Longitude)
	if err != nil {
		// The model is still invoked, just without weather grounding.
		s.logger.Warn("weather fetch failed", "lat", resolved.Latitude, "lon", resolved.Longitude, "error", err)
		return WeatherSnapshot{}
	}
	return snapshot
}
