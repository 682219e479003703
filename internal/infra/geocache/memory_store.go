package geocache

import (
	"context"
	"sync"
	"time"

	"github.com/tenkiguide/backend/internal/domain/location"
)

type memoryEntry struct {
	payload   location.CachedForward
	expiresAt time.Time
}

// MemoryStore is an in-memory geocode cache for tests/dev and for
// deployments without a Valkey instance.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore constructs a cache backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get implements location.Cache.
func (s *MemoryStore) Get(_ context.Context, city string) (location.CachedForward, bool, error) {
	if city == "" {
		return location.CachedForward{}, false, nil
	}
	s.mu.RLock()
	entry, ok := s.entries[city]
	s.mu.RUnlock()
	if !ok {
		return location.CachedForward{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, city)
		s.mu.Unlock()
		return location.CachedForward{}, false, nil
	}
	return entry.payload, true, nil
}

// Put caches the coordinates with optional TTL.
func (s *MemoryStore) Put(_ context.Context, city string, entry location.CachedForward, ttl time.Duration) error {
	if city == "" {
		return nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[city] = memoryEntry{payload: entry, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ location.Cache = (*MemoryStore)(nil)
