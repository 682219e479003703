package location

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"
)

// Config pins the resolver's last-resort location and cache behavior.
type Config struct {
	FallbackLatitude  float64
	FallbackLongitude float64
	FallbackCity      string
	CacheTTL          time.Duration
}

// Resolver decides which location grounds a chat turn. Three tiers are
// evaluated in strict order: explicit mention in the current message, the
// "In <Location>" phrase carried by the client summary, then device
// coordinates or IP geolocation. Every collaborator failure degrades to the
// next tier; Resolve never returns an undefined location.
type Resolver struct {
	cfg        Config
	classifier Classifier
	geocoder   Geocoder
	ipLocator  IPLocator
	cache      Cache
	logger     *slog.Logger
}

// NewResolver wires the resolution engine.
func NewResolver(cfg Config, classifier Classifier, geocoder Geocoder, ipLocator IPLocator, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:        cfg,
		classifier: classifier,
		geocoder:   geocoder,
		ipLocator:  ipLocator,
		cache:      cache,
		logger:     logger.With("component", "location.resolver"),
	}
}

// Resolve runs the priority chain for one turn.
//
// An explicit mention that cannot be geocoded falls through to the device/IP
// tier, not to the summary tier: a place the user just named must not be
// silently replaced by stale summary context.
func (r *Resolver) Resolve(ctx context.Context, q Query) Resolved {
	if name, ok := r.classify(ctx, q.Message); ok {
		r.logger.Debug("explicit location mentioned", "name", name)
		if loc, ok := r.forward(ctx, name); ok {
			return loc
		}
		return r.deviceOrIP(ctx, q)
	}

	if name, ok := LocationFromSummary(q.Summary); ok {
		r.logger.Debug("using summary location", "name", name)
		if loc, ok := r.forward(ctx, name); ok {
			return loc
		}
	}

	return r.deviceOrIP(ctx, q)
}

// ReverseName resolves a display name for known coordinates, used by the
// standalone location endpoint. It never fails.
func (r *Resolver) ReverseName(ctx context.Context, lat, lon float64) string {
	name, err := r.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		r.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return UnknownName
	}
	return name
}

func (r *Resolver) classify(ctx context.Context, message string) (string, bool) {
	name, ok, err := r.classifier.ClassifyLocation(ctx, message)
	if err != nil {
		r.logger.Warn("location classifier failed", "error", err)
		return "", false
	}
	return name, ok
}

func (r *Resolver) forward(ctx context.Context, name string) (Resolved, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Resolved{}, false
	}

	if entry, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		return Resolved{Latitude: entry.Latitude, Longitude: entry.Longitude, DisplayName: entry.DisplayName}, true
	}

	lat, lon, display, err := r.geocoder.Forward(ctx, name)
	if err != nil {
		r.logger.Warn("forward geocoding failed", "name", name, "error", err)
		return Resolved{}, false
	}

	if err := r.cache.Put(ctx, key, CachedForward{Latitude: lat, Longitude: lon, DisplayName: display}, r.cfg.CacheTTL); err != nil {
		r.logger.Debug("geocode cache put failed", "name", name, "error", err)
	}

	return Resolved{Latitude: lat, Longitude: lon, DisplayName: display}, true
}

func (r *Resolver) deviceOrIP(ctx context.Context, q Query) Resolved {
	if q.Latitude != nil && q.Longitude != nil {
		return Resolved{
			Latitude:    *q.Latitude,
			Longitude:   *q.Longitude,
			DisplayName: r.ReverseName(ctx, *q.Latitude, *q.Longitude),
		}
	}

	if usableClientIP(q.ClientIP) {
		if lat, lon, err := r.ipLocator.Locate(ctx, q.ClientIP); err == nil {
			return Resolved{
				Latitude:    lat,
				Longitude:   lon,
				DisplayName: r.ReverseName(ctx, lat, lon),
			}
		} else {
			r.logger.Warn("ip geolocation failed", "ip", q.ClientIP, "error", err)
		}
	}

	r.logger.Info("using fallback location", "city", r.cfg.FallbackCity)
	return Resolved{
		Latitude:    r.cfg.FallbackLatitude,
		Longitude:   r.cfg.FallbackLongitude,
		DisplayName: r.cfg.FallbackCity,
	}
}

func usableClientIP(ip string) bool {
	if ip == "" {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback()
}
