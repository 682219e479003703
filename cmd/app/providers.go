package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/tenkiguide/backend/internal/domain/location"
	"github.com/tenkiguide/backend/internal/infra/audio/ffmpeg"
	"github.com/tenkiguide/backend/internal/infra/config"
	"github.com/tenkiguide/backend/internal/infra/geo/arcgis"
	"github.com/tenkiguide/backend/internal/infra/geo/ipapi"
	"github.com/tenkiguide/backend/internal/infra/geocache"
	"github.com/tenkiguide/backend/internal/infra/llm/gemini"
	"github.com/tenkiguide/backend/internal/infra/speech/googlecloud"
	"github.com/tenkiguide/backend/internal/infra/weather/openmeteo"
)

func provideLocationConfig(cfg *config.Config) location.Config {
	return location.Config{
		FallbackLatitude:  cfg.Fallback.Latitude,
		FallbackLongitude: cfg.Fallback.Longitude,
		FallbackCity:      cfg.Fallback.City,
		CacheTTL:          cfg.Geocoding.Cache.TTL,
	}
}

func provideGeminiClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gemini.Client, error) {
	return gemini.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.CallTimeout, logger)
}

func provideGeocoder(cfg *config.Config) *arcgis.Client {
	return arcgis.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.Timeout)
}

func provideIPLocator(cfg *config.Config) *ipapi.Client {
	return ipapi.NewClient(cfg.Geocoding.IPLookupURL, cfg.Geocoding.Timeout)
}

func provideWeatherClient(cfg *config.Config) *openmeteo.Client {
	return openmeteo.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout)
}

func provideGeocodeCache(cfg *config.Config, logger *slog.Logger) location.Cache {
	if cfg.Geocoding.Cache.ValkeyEnable {
		opt, err := buildValkeyOptions(cfg.Geocoding.Cache.ValkeyAddr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return geocache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return geocache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("geocode valkey cache enabled", "addr", cfg.Geocoding.Cache.ValkeyAddr)
			return geocache.NewValkeyStore(client, "geo")
		}
	}
	return geocache.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideSTTClient(ctx context.Context) (*googlecloud.STTClient, error) {
	return googlecloud.NewSTTClient(ctx)
}

func provideTTSClient(ctx context.Context, cfg *config.Config) (*googlecloud.TTSClient, error) {
	return googlecloud.NewTTSClient(ctx, cfg.Speech.JapaneseVoice, cfg.Speech.EnglishVoice)
}

func provideTranscoder(cfg *config.Config) *ffmpeg.Transcoder {
	return ffmpeg.NewTranscoder(cfg.Speech.FFmpegPath)
}
