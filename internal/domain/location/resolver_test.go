package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	FallbackLatitude:  12.9165,
	FallbackLongitude: 79.1325,
	FallbackCity:      "Vellore",
	CacheTTL:          time.Hour,
}

func newResolverUnderTest(classifier Classifier, geocoder Geocoder, ipLocator IPLocator) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(testConfig, classifier, geocoder, ipLocator, newNopCache(), logger)
}

func TestResolveExplicitMentionWinsOverEverything(t *testing.T) {
	classifier := &stubClassifier{name: "Paris", ok: true}
	geocoder := &stubGeocoder{
		forward: map[string]CachedForward{
			"Paris": {Latitude: 48.8566, Longitude: 2.3522, DisplayName: "Paris"},
			"Tokyo": {Latitude: 35.6762, Longitude: 139.6503, DisplayName: "Tokyo"},
		},
	}

	deviceLat, deviceLon := 51.5074, -0.1278
	resolved := newResolverUnderTest(classifier, geocoder, &stubIPLocator{}).Resolve(context.Background(), Query{
		Message:   "What's the weather in Paris?",
		Summary:   "In Tokyo (travel theme), the user asked about sights.",
		Latitude:  &deviceLat,
		Longitude: &deviceLon,
	})

	require.Equal(t, "Paris", resolved.DisplayName)
	require.Equal(t, 48.8566, resolved.Latitude)
	require.Equal(t, 2.3522, resolved.Longitude)
}

func TestResolveExplicitMentionGeocodeFailureSkipsSummaryTier(t *testing.T) {
	// "Atlantis" cannot be geocoded; the summary names a perfectly geocodable
	// city, but an explicit mention must never be replaced by summary context.
	classifier := &stubClassifier{name: "Atlantis", ok: true}
	geocoder := &stubGeocoder{
		forward:     map[string]CachedForward{"Berlin": {Latitude: 52.52, Longitude: 13.405, DisplayName: "Berlin"}},
		reverseName: "London",
	}

	deviceLat, deviceLon := 51.5074, -0.1278
	resolved := newResolverUnderTest(classifier, geocoder, &stubIPLocator{}).Resolve(context.Background(), Query{
		Message:   "How is Atlantis today?",
		Summary:   "In Berlin (music theme), the user asked about concerts.",
		Latitude:  &deviceLat,
		Longitude: &deviceLon,
	})

	require.Equal(t, 51.5074, resolved.Latitude)
	require.Equal(t, -0.1278, resolved.Longitude)
	require.Equal(t, "London", resolved.DisplayName)
}

func TestResolveSummaryContinuity(t *testing.T) {
	classifier := &stubClassifier{}
	geocoder := &stubGeocoder{
		forward: map[string]CachedForward{"Berlin": {Latitude: 52.52, Longitude: 13.405, DisplayName: "Berlin"}},
	}

	deviceLat, deviceLon := 51.5074, -0.1278
	resolved := newResolverUnderTest(classifier, geocoder, &stubIPLocator{}).Resolve(context.Background(), Query{
		Message:   "What should I wear tomorrow?",
		Summary:   "In Berlin (music theme), the user asked about venues.",
		Latitude:  &deviceLat,
		Longitude: &deviceLon,
	})

	require.Equal(t, "Berlin", resolved.DisplayName)
	require.Equal(t, 52.52, resolved.Latitude)
}

func TestResolveSummaryGeocodeFailureFallsToDevice(t *testing.T) {
	classifier := &stubClassifier{}
	geocoder := &stubGeocoder{reverseName: "London"}

	deviceLat, deviceLon := 51.5074, -0.1278
	resolved := newResolverUnderTest(classifier, geocoder, &stubIPLocator{}).Resolve(context.Background(), Query{
		Message:   "Anything fun nearby?",
		Summary:   "In Nowhereville (travel theme), the user asked around.",
		Latitude:  &deviceLat,
		Longitude: &deviceLon,
	})

	require.Equal(t, 51.5074, resolved.Latitude)
	require.Equal(t, -0.1278, resolved.Longitude)
	require.Equal(t, "London", resolved.DisplayName)
}

func TestResolveDeviceCoordinatesUsedExactly(t *testing.T) {
	classifier := &stubClassifier{}
	geocoder := &stubGeocoder{reverseName: "Shibuya"}

	deviceLat, deviceLon := 35.6595, 139.7005
	resolved := newResolverUnderTest(classifier, geocoder, &stubIPLocator{}).Resolve(context.Background(), Query{
		Message:   "Is it going to rain?",
		Summary:   "No previous context.",
		Latitude:  &deviceLat,
		Longitude: &deviceLon,
	})

	require.Equal(t, deviceLat, resolved.Latitude)
	require.Equal(t, deviceLon, resolved.Longitude)
	require.Equal(t, "Shibuya", resolved.DisplayName)
}

func TestResolveDeviceReverseFailureYieldsUnknownName(t *testing.T) {
	classifier := &stubClassifier{}
	geocoder := &stubGeocoder{reverseErr: errors.New("provider down")}

	deviceLat, deviceLon := 35.6595, 139.7005
	resolved := newResolverUnderTest(classifier, geocoder, &stubIPLocator{}).Resolve(context.Background(), Query{
		Message: "Is it going to rain?",
		Summary: "No previous context.", Latitude: &deviceLat, Longitude: &deviceLon,
	})

	require.Equal(t, deviceLat, resolved.Latitude)
	require.Equal(t, UnknownName, resolved.DisplayName)
}

func TestResolveIPGeolocation(t *testing.T) {
	classifier := &stubClassifier{}
	geocoder := &stubGeocoder{reverseName: "Chennai"}
	ipLocator := &stubIPLocator{lat: 13.0827, lon: 80.2707}

	resolved := newResolverUnderTest(classifier, geocoder, ipLocator).Resolve(context.Background(), Query{
		Message:  "What's outside?",
		Summary:  "No previous context.",
		ClientIP: "203.0.113.9",
	})

	require.Equal(t, 13.0827, resolved.Latitude)
	require.Equal(t, "Chennai", resolved.DisplayName)
	require.Equal(t, "203.0.113.9", ipLocator.lastIP)
}

func TestResolveLoopbackIPSkipsIPLookup(t *testing.T) {
	classifier := &stubClassifier{}
	geocoder := &stubGeocoder{}
	ipLocator := &stubIPLocator{lat: 13.0827, lon: 80.2707}

	resolved := newResolverUnderTest(classifier, geocoder, ipLocator).Resolve(context.Background(), Query{
		Message:  "What's outside?",
		Summary:  "No previous context.",
		ClientIP: "127.0.0.1",
	})

	require.Empty(t, ipLocator.lastIP)
	require.Equal(t, testConfig.FallbackCity, resolved.DisplayName)
}

func TestResolveEverythingFailsUsesFixedFallback(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("model unavailable")}
	geocoder := &stubGeocoder{reverseErr: errors.New("provider down")}
	ipLocator := &stubIPLocator{err: errors.New("lookup failed")}

	resolved := newResolverUnderTest(classifier, geocoder, ipLocator).Resolve(context.Background(), Query{
		Message:  "hello",
		Summary:  "No previous context.",
		ClientIP: "203.0.113.9",
	})

	require.Equal(t, 12.9165, resolved.Latitude)
	require.Equal(t, 79.1325, resolved.Longitude)
	require.Equal(t, "Vellore", resolved.DisplayName)
}

func TestResolveForwardCacheHitSkipsGeocoder(t *testing.T) {
	classifier := &stubClassifier{name: "Paris", ok: true}
	geocoder := &stubGeocoder{}
	cache := newNopCache()
	cache.entries["paris"] = CachedForward{Latitude: 48.8566, Longitude: 2.3522, DisplayName: "Paris"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := NewResolver(testConfig, classifier, geocoder, &stubIPLocator{}, cache, logger)

	resolved := resolver.Resolve(context.Background(), Query{Message: "weather in Paris"})
	require.Equal(t, "Paris", resolved.DisplayName)
	require.Zero(t, geocoder.forwardCalls)
}

type stubClassifier struct {
	name string
	ok   bool
	err  error
}

func (s *stubClassifier) ClassifyLocation(_ context.Context, _ string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	return s.name, s.ok, nil
}

type stubGeocoder struct {
	forward      map[string]CachedForward
	forwardCalls int
	reverseName  string
	reverseErr   error
}

func (s *stubGeocoder) Forward(_ context.Context, name string) (float64, float64, string, error) {
	s.forwardCalls++
	entry, ok := s.forward[name]
	if !ok {
		return 0, 0, "", errors.New("no match")
	}
	return entry.Latitude, entry.Longitude, entry.DisplayName, nil
}

func (s *stubGeocoder) Reverse(_ context.Context, _, _ float64) (string, error) {
	if s.reverseErr != nil {
		return "", s.reverseErr
	}
	return s.reverseName, nil
}

type stubIPLocator struct {
	lat, lon float64
	err      error
	lastIP   string
}

func (s *stubIPLocator) Locate(_ context.Context, ip string) (float64, float64, error) {
	s.lastIP = ip
	if s.err != nil {
		return 0, 0, s.err
	}
	return s.lat, s.lon, nil
}

type nopCache struct {
	entries map[string]CachedForward
}

func newNopCache() *nopCache {
	return &nopCache{entries: make(map[string]CachedForward)}
}

func (c *nopCache) Get(_ context.Context, city string) (CachedForward, bool, error) {
	entry, ok := c.entries[city]
	return entry, ok, nil
}

func (c *nopCache) Put(_ context.Context, city string, entry CachedForward, _ time.Duration) error {
	c.entries[city] = entry
	return nil
}
