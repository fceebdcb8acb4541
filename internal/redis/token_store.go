package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes
const (
	resetTokenPrefix = "reset-token:"
)

// ResetTokenTTL bounds how long a password-reset token stays redeemable.
// Matches the signed token's own expiry so the marker never outlives it.
const ResetTokenTTL = time.Hour

// TokenStore tracks outstanding password-reset tokens in Redis. A token is
// redeemable exactly once: Consume removes the marker atomically, so a
// second reset attempt with the same token fails even if the signature is
// still valid.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Save records a reset token for the given email.
func (s *TokenStore) Save(ctx context.Context, tokenID, email string) error {
	return s.client.Set(ctx, resetTokenPrefix+tokenID, email, ResetTokenTTL).Err()
}

// Consume redeems a reset token, returning the email it was issued for.
// Returns ok=false if the token is unknown, expired, or already redeemed.
func (s *TokenStore) Consume(ctx context.Context, tokenID string) (email string, ok bool, err error) {
	email, err = s.client.GetDel(ctx, resetTokenPrefix+tokenID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return email, true, nil
}
