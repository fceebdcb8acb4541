package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freelance/internal/domain"
	"freelance/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, project_id, amount, currency, status, stripe_payment_id, stripe_client_secret, created_at, updated_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, project_id, amount, currency, status, stripe_payment_id, stripe_client_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.ProjectID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.StripePaymentID,
		payment.StripeClientSecret,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, id))
}

// GetByIntentID retrieves a payment by its processor intent id.
func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE stripe_payment_id = $1`
	return scanPayment(r.q.QueryRowContext(ctx, query, intentID))
}

// TransitionStatusByIntentID moves a pending payment to a terminal status.
// The WHERE clause makes the update conditional on the payment still being
// Pending; the database's atomic update is what keeps two concurrent
// deliveries of the same event from both applying.
func (r *PaymentRepository) TransitionStatusByIntentID(ctx context.Context, intentID string, status domain.PaymentStatus) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE stripe_payment_id = $1 AND status = $3
	`
	result, err := r.q.ExecContext(ctx, query, intentID, status, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// SetStatus overwrites the status of a payment unconditionally.
func (r *PaymentRepository) SetStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List retrieves payments ordered by creation time, newest first.
func (r *PaymentRepository) List(ctx context.Context, offset, limit int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID, &p.ProjectID, &p.Amount, &p.Currency, &p.Status,
			&p.StripePaymentID, &p.StripeClientSecret, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.ProjectID, &p.Amount, &p.Currency, &p.Status,
		&p.StripePaymentID, &p.StripeClientSecret, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
