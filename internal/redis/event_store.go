package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	webhookEventPrefix = "webhook-event:"

	// WebhookEventTTL is how long delivered event ids are remembered.
	// Redelivery past this window is still safe: the conditional status
	// update in the payment store is the real idempotency guard, this
	// marker only lets duplicates be spotted and logged cheaply.
	WebhookEventTTL = 24 * time.Hour
)

// EventStore remembers which processor webhook events have already been
// dispatched, keyed by the processor-assigned event id.
type EventStore struct {
	client *redis.Client
}

// NewEventStore creates a new EventStore.
func NewEventStore(client *redis.Client) *EventStore {
	return &EventStore{client: client}
}

// MarkProcessed records an event id, returning true if this is its first
// delivery. SETNX keeps the check-and-set race free across concurrent
// deliveries of the same event.
func (s *EventStore) MarkProcessed(ctx context.Context, eventID string) (first bool, err error) {
	return s.client.SetNX(ctx, webhookEventPrefix+eventID, 1, WebhookEventTTL).Result()
}
