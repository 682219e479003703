package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Weather   WeatherConfig   `yaml:"weather"`
	Speech    SpeechConfig    `yaml:"speech"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	KeepAlive KeepAliveConfig `yaml:"keepAlive"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains Gemini settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	Model       string        `yaml:"model"`
	CallTimeout time.Duration `yaml:"callTimeout"`
}

// GeocodingConfig covers forward/reverse geocoding and IP geolocation.
type GeocodingConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	IPLookupURL string        `yaml:"ipLookupUrl"`
	Timeout     time.Duration `yaml:"timeout"`
	Cache       CacheConfig   `yaml:"cache"`
}

// CacheConfig controls the forward-geocode cache.
type CacheConfig struct {
	TTL          time.Duration `yaml:"ttl"`
	ValkeyEnable bool          `yaml:"valkeyEnabled"`
	ValkeyAddr   string        `yaml:"valkeyAddr"`
}

// WeatherConfig points at the forecast provider.
type WeatherConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// SpeechConfig selects provider voices for synthesis.
type SpeechConfig struct {
	JapaneseVoice string `yaml:"japaneseVoice"`
	EnglishVoice  string `yaml:"englishVoice"`
	FFmpegPath    string `yaml:"ffmpegPath"`
}

// FallbackConfig is the last-resort location used when every resolution
// signal fails. The chat flow must never run without a location.
type FallbackConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	City      string  `yaml:"city"`
}

// KeepAliveConfig controls the background warm-up loop.
type KeepAliveConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	ModelEveryN  int           `yaml:"modelEveryN"`
	InitialDelay time.Duration `yaml:"initialDelay"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_CALL_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.CallTimeout = parsed
		}
	}
	if v := os.Getenv("GEOCODING_BASE_URL"); v != "" {
		cfg.Geocoding.BaseURL = v
	}
	if v := os.Getenv("IP_LOOKUP_URL"); v != "" {
		cfg.Geocoding.IPLookupURL = v
	}
	if v := os.Getenv("GEOCODING_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geocoding.Timeout = parsed
		}
	}
	if v := os.Getenv("GEOCODE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geocoding.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("GEOCODE_CACHE_VALKEY_ENABLED"); v != "" {
		cfg.Geocoding.Cache.ValkeyEnable = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("GEOCODE_CACHE_VALKEY_ADDR"); v != "" {
		cfg.Geocoding.Cache.ValkeyAddr = v
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("TTS_VOICE_JA"); v != "" {
		cfg.Speech.JapaneseVoice = v
	}
	if v := os.Getenv("TTS_VOICE_EN"); v != "" {
		cfg.Speech.EnglishVoice = v
	}
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		cfg.Speech.FFmpegPath = v
	}
	if v := os.Getenv("FALLBACK_LATITUDE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fallback.Latitude = parsed
		}
	}
	if v := os.Getenv("FALLBACK_LONGITUDE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fallback.Longitude = parsed
		}
	}
	if v := os.Getenv("FALLBACK_CITY"); v != "" {
		cfg.Fallback.City = v
	}
	if v := os.Getenv("KEEPALIVE_ENABLED"); v != "" {
		cfg.KeepAlive.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("KEEPALIVE_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.KeepAlive.Interval = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Model:       "gemini-2.5-flash-lite",
			CallTimeout: 45 * time.Second,
		},
		Geocoding: GeocodingConfig{
			BaseURL:     "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer",
			IPLookupURL: "http://ip-api.com/json",
			Timeout:     8 * time.Second,
			Cache: CacheConfig{
				TTL: 12 * time.Hour,
			},
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.open-meteo.com/v1/forecast",
			Timeout: 8 * time.Second,
		},
		Speech: SpeechConfig{
			JapaneseVoice: "ja-JP-Neural2-B",
			EnglishVoice:  "en-US-Neural2-F",
			FFmpegPath:    "ffmpeg",
		},
		Fallback: FallbackConfig{
			Latitude:  12.9165,
			Longitude: 79.1325,
			City:      "Vellore",
		},
		KeepAlive: KeepAliveConfig{
			Enabled:      true,
			Interval:     time.Minute,
			ModelEveryN:  10,
			InitialDelay: time.Minute,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.CallTimeout <= 0 {
		return errors.New("llm.callTimeout must be positive")
	}
	if c.Geocoding.BaseURL == "" {
		return errors.New("geocoding.baseUrl cannot be empty")
	}
	if c.Geocoding.IPLookupURL == "" {
		return errors.New("geocoding.ipLookupUrl cannot be empty")
	}
	if c.Geocoding.Cache.TTL < 0 {
		return errors.New("geocoding.cache.ttl cannot be negative")
	}
	if c.Geocoding.Cache.ValkeyEnable && strings.TrimSpace(c.Geocoding.Cache.ValkeyAddr) == "" {
		return errors.New("geocoding.cache.valkeyAddr cannot be empty when the valkey cache is enabled")
	}
	if c.Weather.BaseURL == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Fallback.City == "" {
		return errors.New("fallback.city cannot be empty")
	}
	if c.KeepAlive.Enabled {
		if c.KeepAlive.Interval <= 0 {
			return errors.New("keepAlive.interval must be positive")
		}
		if c.KeepAlive.ModelEveryN <= 0 {
			return errors.New("keepAlive.modelEveryN must be positive")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
