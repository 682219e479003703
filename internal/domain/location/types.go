package location

import (
	"context"
	"time"
)

// UnknownName is returned when coordinates are known but no usable display
// name could be derived from the reverse-geocoding provider.
const UnknownName = "Unknown Location"

// Resolved is the single location grounding one chat turn. It is produced
// exactly once per turn and never mutated afterwards.
type Resolved struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Query carries every resolution signal available for one turn.
type Query struct {
	Message   string
	Summary   string
	Latitude  *float64
	Longitude *float64
	ClientIP  string
}

// Classifier asks the model whether a message names a place. The returned
// name is already sanitized; ok is false when no place was named or the
// classifier output failed the safety guard.
type Classifier interface {
	ClassifyLocation(ctx context.Context, message string) (name string, ok bool, err error)
}

// Geocoder provides forward (name to coordinates) and reverse (coordinates to
// display name) lookups. Reverse implementations own their provider-specific
// name-selection heuristics and return a ready-to-display name.
type Geocoder interface {
	Forward(ctx context.Context, name string) (lat, lon float64, displayName string, err error)
	Reverse(ctx context.Context, lat, lon float64) (displayName string, err error)
}

// IPLocator derives coarse coordinates from a client IP address.
type IPLocator interface {
	Locate(ctx context.Context, ip string) (lat, lon float64, err error)
}

// CachedForward is the payload stored per forward-geocoded city.
type CachedForward struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

// Cache stores forward-geocode results keyed by the requested city name.
// Weather data is never cached; neither are reverse lookups of device
// coordinates, which vary with every fix.
type Cache interface {
	Get(ctx context.Context, city string) (CachedForward, bool, error)
	Put(ctx context.Context, city string, entry CachedForward, ttl time.Duration) error
}
