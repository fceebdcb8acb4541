package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"freelance/internal/domain"
	"freelance/internal/repository"
	"freelance/internal/stripe"
)

// PaymentProcessor creates payment intents at the external processor.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, params stripe.CreateIntentParams) (*stripe.Intent, error)
}

// WebhookVerifier authenticates raw webhook payloads and parses them into
// typed events.
type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (*stripe.Event, error)
}

// WebhookEventStore remembers dispatched webhook event ids so redeliveries
// can be identified.
type WebhookEventStore interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// PaymentService orchestrates the payment lifecycle: intent creation,
// record persistence, and webhook-driven status transitions.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	projectRepo repository.ProjectRepository
	processor   PaymentProcessor
	verifier    WebhookVerifier
	events      WebhookEventStore
	log         *logrus.Logger
}

// NewPaymentService creates a new PaymentService. events may be nil, in
// which case duplicate-delivery detection is skipped (transitions stay
// idempotent regardless).
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	projectRepo repository.ProjectRepository,
	processor PaymentProcessor,
	verifier WebhookVerifier,
	events WebhookEventStore,
	log *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		projectRepo: projectRepo,
		processor:   processor,
		verifier:    verifier,
		events:      events,
		log:         log,
	}
}

// InitiatePaymentRequest contains the parameters for initiating a payment.
type InitiatePaymentRequest struct {
	ProjectID string
	Amount    float64
	Currency  string
}

// InitiatePayment validates the request, creates a payment intent at the
// processor, and persists a Pending payment record carrying the intent id
// and client secret.
//
// Validation and the project existence check run before the processor is
// called; a processor failure leaves nothing persisted, so every stored
// record corresponds to a real intent.
func (s *PaymentService) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*domain.Payment, error) {
	if req.ProjectID == "" {
		return nil, ErrInvalidProjectID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	currency := strings.ToLower(req.Currency)
	if !domain.SupportedCurrencies[currency] {
		return nil, ErrInvalidCurrency
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	intent, err := s.processor.CreateIntent(ctx, stripe.CreateIntentParams{
		AmountMinor: int64(math.Round(req.Amount * 100)),
		Currency:    currency,
		Metadata:    map[string]string{"projectId": req.ProjectID},
	})
	if err != nil {
		s.log.WithError(err).Error("payment intent creation failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentProcessor, err)
	}

	payment := &domain.Payment{
		ID:                 uuid.New().String(),
		ProjectID:          req.ProjectID,
		Amount:             req.Amount,
		Currency:           currency,
		Status:             domain.PaymentStatusPending,
		StripePaymentID:    intent.ID,
		StripeClientSecret: intent.ClientSecret,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"project_id": payment.ProjectID,
		"intent_id":  payment.StripePaymentID,
	}).Info("payment initiated")

	return payment, nil
}

// Webhook outcomes reported by HandleWebhook.
const (
	WebhookOutcomeApplied       = "applied"
	WebhookOutcomeAbsorbed      = "absorbed"
	WebhookOutcomeUnknownIntent = "unknown_intent"
	WebhookOutcomeIgnored       = "ignored"
)

// WebhookResult describes what a verified webhook delivery did.
type WebhookResult struct {
	EventID   string
	EventType string
	IntentID  string
	Outcome   string
}

// HandleWebhook authenticates a processor event and applies the status
// transition it reports. Verification happens before any of the payload is
// interpreted; a failed signature mutates nothing.
//
// A nil error means the delivery was dispatched and must be acknowledged,
// even when the outcome is an unknown intent id: acknowledgement stops
// processor redelivery and is distinct from the inner transition outcome,
// which the result (and the log) reports.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (*WebhookResult, error) {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		s.log.WithError(err).Warn("webhook signature verification failed")
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	if s.events != nil {
		first, err := s.events.MarkProcessed(ctx, event.ID)
		if err != nil {
			// Marker store trouble must not block reconciliation; the
			// conditional transition below stays idempotent without it.
			s.log.WithError(err).Warn("webhook event marker store unavailable")
		} else if !first {
			s.log.WithField("event_id", event.ID).Info("duplicate webhook delivery")
		}
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: event.Type,
		IntentID:  event.IntentID(),
	}

	switch event.Type {
	case stripe.EventPaymentSucceeded:
		return s.applyTransition(ctx, result, domain.PaymentStatusPaid)
	case stripe.EventPaymentFailed:
		return s.applyTransition(ctx, result, domain.PaymentStatusFailed)
	default:
		s.log.WithField("event_type", event.Type).Info("unhandled webhook event type")
		result.Outcome = WebhookOutcomeIgnored
		return result, nil
	}
}

// applyTransition moves the payment correlated with the event's intent id
// to the given terminal status. The repository update only fires while the
// payment is Pending, so redelivered and concurrent events are absorbed.
func (s *PaymentService) applyTransition(ctx context.Context, result *WebhookResult, status domain.PaymentStatus) (*WebhookResult, error) {
	transitioned, err := s.paymentRepo.TransitionStatusByIntentID(ctx, result.IntentID, status)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.log.WithFields(logrus.Fields{
			"intent_id": result.IntentID,
			"status":    status,
		}).Info("payment status transitioned")
		result.Outcome = WebhookOutcomeApplied
		return result, nil
	}

	// Nothing was Pending for this intent id: either the record is already
	// terminal (idempotent absorption) or it does not exist at all, which
	// is an inconsistency operators need to see.
	if _, err := s.paymentRepo.GetByIntentID(ctx, result.IntentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.WithField("intent_id", result.IntentID).Error("no payment record for webhook intent id")
			result.Outcome = WebhookOutcomeUnknownIntent
			return result, nil
		}
		return nil, err
	}

	result.Outcome = WebhookOutcomeAbsorbed
	return result, nil
}

// AdminSetStatus overwrites a payment's status. This bypasses the normal
// forward-only transition graph on purpose: it is an administrative escape
// hatch, and every use is logged at warning level with both statuses.
func (s *PaymentService) AdminSetStatus(ctx context.Context, paymentID string, status domain.PaymentStatus) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	if !domain.ValidPaymentStatus(status) {
		return nil, ErrInvalidPaymentStatus
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SetStatus(ctx, paymentID, status); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"old_status": payment.Status,
		"new_status": status,
	}).Warn("payment status overridden by admin")

	payment.Status = status
	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// ListPayments retrieves a page of payments, newest first. Page and limit
// fall back to 1 and 10; limit is capped at 100.
func (s *PaymentService) ListPayments(ctx context.Context, page, limit int) ([]*domain.Payment, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.paymentRepo.List(ctx, (page-1)*limit, limit)
}
