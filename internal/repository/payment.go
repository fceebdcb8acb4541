package repository

import (
	"context"

	"freelance/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIntentID retrieves a payment by its processor intent id.
	GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)

	// TransitionStatusByIntentID moves a pending payment identified by its
	// processor intent id to the given terminal status. The update is
	// conditional on the current status being Pending, so concurrent
	// deliveries of the same event cannot apply the transition twice.
	// Returns true if a row was transitioned, false if no pending payment
	// matched.
	TransitionStatusByIntentID(ctx context.Context, intentID string, status domain.PaymentStatus) (bool, error)

	// SetStatus overwrites the status of a payment unconditionally.
	SetStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// List retrieves payments ordered by creation time, newest first,
	// using offset pagination.
	List(ctx context.Context, offset, limit int) ([]*domain.Payment, error)
}
