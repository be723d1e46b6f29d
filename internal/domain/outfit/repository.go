package outfit

import (
	"context"
	"time"
)

// ProfileRepository loads personalization settings.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (UserProfile, bool, error)
}

// WardrobeRepository loads a user's garments.
type WardrobeRepository interface {
	ListByOwner(ctx context.Context, userID int64) (Wardrobe, error)
}

// WeatherStore holds the latest resolved snapshot per region.
type WeatherStore interface {
	Latest(ctx context.Context, region string) (Weather, bool, error)
	Save(ctx context.Context, region string, weather Weather, ttl time.Duration) error
}
