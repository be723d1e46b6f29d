package weatherstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
)

// ValkeyStore persists weather snapshots using a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "weather"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Latest(ctx context.Context, region string) (outfit.Weather, bool, error) {
	if region == "" {
		return outfit.Weather{}, false, nil
	}
	result := s.client.Do(ctx, s.client.B().Get().Key(s.regionKey(region)).Build())
	payload, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return outfit.Weather{}, false, nil
		}
		return outfit.Weather{}, false, err
	}
	var weather outfit.Weather
	if err := json.Unmarshal([]byte(payload), &weather); err != nil {
		return outfit.Weather{}, false, err
	}
	return weather, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, region string, weather outfit.Weather, ttl time.Duration) error {
	payload, err := json.Marshal(weather)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.regionKey(region)).Value(string(payload))
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

func (s *ValkeyStore) regionKey(region string) string {
	return fmt.Sprintf("%s:%s", s.prefix, region)
}

var _ outfit.WeatherStore = (*ValkeyStore)(nil)
