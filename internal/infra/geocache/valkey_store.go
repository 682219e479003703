package geocache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/tenkiguide/backend/internal/domain/location"
)

// ValkeyStore persists forward-geocode results in a Valkey-compatible
// database so repeated city lookups skip the geocoding provider.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a cache backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "geo"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements location.Cache.
func (s *ValkeyStore) Get(ctx context.Context, city string) (location.CachedForward, bool, error) {
	if city == "" {
		return location.CachedForward{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.cityKey(city)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return location.CachedForward{}, false, nil
		}
		return location.CachedForward{}, false, err
	}
	var entry location.CachedForward
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return location.CachedForward{}, false, err
	}
	return entry, true, nil
}

// Put caches the coordinates with optional TTL.
func (s *ValkeyStore) Put(ctx context.Context, city string, entry location.CachedForward, ttl time.Duration) error {
	if city == "" {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.cityKey(city)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) cityKey(city string) string {
	return fmt.Sprintf("%s:forward:%s", s.prefix, city)
}

var _ location.Cache = (*ValkeyStore)(nil)
