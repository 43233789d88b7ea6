package cache

import (
	"context"
	"fmt"
	"time"

	"agora/internal/models"
)

const (
	CommunityKeyPrefix  = "community:%s"
	generationKeyPrefix = "gen:%s"
)

const (
	CommunityTTL  = 10 * time.Minute
	generationTTL = 24 * time.Hour
)

// CommunityKey is the cache key of a community detail entry, by case-normalized name.
func CommunityKey(name string) string {
	return fmt.Sprintf(CommunityKeyPrefix, models.CommunityKey(name))
}

func generationKey(key string) string {
	return fmt.Sprintf(generationKeyPrefix, key)
}

// InvalidateCommunity drops the cached detail of the named community.
func (s *Store) InvalidateCommunity(ctx context.Context, name string) error {
	return s.Invalidate(ctx, CommunityKey(name))
}
