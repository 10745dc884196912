package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// BlacklistRepository implements repository.BlacklistRepository using Redis.
// Revoked tokens are stored under a hash of the raw token with a TTL equal to
// the token's remaining lifetime, so entries disappear once the token would
// have expired anyway.
type BlacklistRepository struct {
	client *redis.Client
}

// NewBlacklistRepository creates a new Redis-backed token blacklist.
func NewBlacklistRepository(client *redis.Client) *BlacklistRepository {
	return &BlacklistRepository{client: client}
}

// Revoke marks a token as revoked for the given TTL. A non-positive TTL means
// the token has already expired and nothing needs to be stored.
func (r *BlacklistRepository) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, tokenKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether the token has been revoked.
func (r *BlacklistRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, tokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check token: %w", err)
	}

	return n > 0, nil
}

// tokenKey hashes the raw token so arbitrarily long JWTs become fixed-size keys.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
