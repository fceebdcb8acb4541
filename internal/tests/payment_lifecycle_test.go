package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"freelance/internal/domain"
	"freelance/internal/repository"
	"freelance/internal/service"
	"freelance/internal/stripe"
)

const webhookSecret = "whsec_test"

func newPaymentService(paymentRepo *MockPaymentRepository, projectRepo *MockProjectRepository, processor *MockProcessor) *service.PaymentService {
	return service.NewPaymentService(
		paymentRepo,
		projectRepo,
		processor,
		stripe.NewWebhookVerifier(webhookSecret),
		nil,
		NewTestLogger(),
	)
}

func signedEvent(eventID, eventType, intentID string) (payload []byte, sigHeader string) {
	payload = []byte(fmt.Sprintf(`{"id":%q,"type":%q,"data":{"object":{"id":%q}}}`, eventID, eventType, intentID))
	return payload, stripe.SignPayload(time.Now(), payload, webhookSecret)
}

// ──────────────────────────────────────────────
// PAYMENT INITIATION
// ──────────────────────────────────────────────

func TestInitiatePayment_CreatesPendingRecord(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{ID: "proj-1", Title: "Site redesign", CreatedBy: "user-1"})
	paymentRepo := NewMockPaymentRepository()
	processor := NewMockProcessor(&stripe.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"})

	svc := newPaymentService(paymentRepo, projectRepo, processor)

	payment, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		ProjectID: "proj-1",
		Amount:    50.00,
		Currency:  "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusPending, payment.Status)
	}
	if payment.StripePaymentID != "pi_123" {
		t.Errorf("expected intent id pi_123, got %s", payment.StripePaymentID)
	}
	if payment.StripeClientSecret != "pi_123_secret" {
		t.Errorf("expected client secret to be stored, got %s", payment.StripeClientSecret)
	}
	if payment.Currency != "usd" {
		t.Errorf("expected currency lowercased to usd, got %s", payment.Currency)
	}
	if paymentRepo.CountPayments() != 1 {
		t.Errorf("expected exactly 1 payment record, got %d", paymentRepo.CountPayments())
	}

	// The processor receives minor units and correlation metadata.
	if processor.LastParams.AmountMinor != 5000 {
		t.Errorf("expected amount 5000 minor units, got %d", processor.LastParams.AmountMinor)
	}
	if processor.LastParams.Currency != "usd" {
		t.Errorf("expected lowercase currency, got %s", processor.LastParams.Currency)
	}
	if processor.LastParams.Metadata["projectId"] != "proj-1" {
		t.Errorf("expected projectId metadata, got %v", processor.LastParams.Metadata)
	}
}

func TestInitiatePayment_RejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{ID: "proj-1"})
	paymentRepo := NewMockPaymentRepository()
	processor := NewMockProcessor(&stripe.Intent{ID: "pi_1", ClientSecret: "s"})

	svc := newPaymentService(paymentRepo, projectRepo, processor)

	for _, amount := range []float64{0, -5} {
		_, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
			ProjectID: "proj-1",
			Amount:    amount,
			Currency:  "usd",
		})
		if !errors.Is(err, service.ErrInvalidPaymentAmount) {
			t.Errorf("amount %v: expected ErrInvalidPaymentAmount, got %v", amount, err)
		}
	}

	if processor.CreateIntentCallCount != 0 {
		t.Error("processor must not be called for invalid input")
	}
	if paymentRepo.CountPayments() != 0 {
		t.Error("nothing must be persisted for invalid input")
	}
}

func TestInitiatePayment_RejectsUnsupportedCurrency(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{ID: "proj-1"})
	paymentRepo := NewMockPaymentRepository()
	processor := NewMockProcessor(&stripe.Intent{ID: "pi_1", ClientSecret: "s"})

	svc := newPaymentService(paymentRepo, projectRepo, processor)

	_, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		ProjectID: "proj-1",
		Amount:    10,
		Currency:  "jpy",
	})
	if !errors.Is(err, service.ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got %v", err)
	}
	if paymentRepo.CountPayments() != 0 {
		t.Error("nothing must be persisted for invalid input")
	}
}

func TestInitiatePayment_UnknownProject(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	processor := NewMockProcessor(&stripe.Intent{ID: "pi_1", ClientSecret: "s"})

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), processor)

	_, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		ProjectID: "missing",
		Amount:    10,
		Currency:  "usd",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if processor.CreateIntentCallCount != 0 {
		t.Error("processor must not be called when the project does not exist")
	}
}

func TestInitiatePayment_ProcessorFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{ID: "proj-1"})
	paymentRepo := NewMockPaymentRepository()
	processor := NewMockProcessor(nil)
	processor.CreateError = errors.New("connection refused")

	svc := newPaymentService(paymentRepo, projectRepo, processor)

	_, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		ProjectID: "proj-1",
		Amount:    25,
		Currency:  "eur",
	})
	if !errors.Is(err, service.ErrPaymentProcessor) {
		t.Errorf("expected ErrPaymentProcessor, got %v", err)
	}
	if paymentRepo.CountPayments() != 0 {
		t.Error("a failed processor call must leave no record behind")
	}
}

// ──────────────────────────────────────────────
// WEBHOOK RECONCILIATION
// ──────────────────────────────────────────────

func TestWebhook_ScenarioInitiateThenSucceedThenRedeliver(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{ID: "P1", Title: "P1"})
	paymentRepo := NewMockPaymentRepository()
	processor := NewMockProcessor(&stripe.Intent{ID: "pi_123", ClientSecret: "cs_123"})

	svc := newPaymentService(paymentRepo, projectRepo, processor)

	payment, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		ProjectID: "P1",
		Amount:    50.00,
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Fatalf("expected Pending after initiation, got %s", payment.Status)
	}

	// Success event arrives.
	payload, sig := signedEvent("evt_1", stripe.EventPaymentSucceeded, "pi_123")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != service.WebhookOutcomeApplied {
		t.Errorf("expected outcome applied, got %s", result.Outcome)
	}
	if got := paymentRepo.GetPayment(payment.ID).Status; got != domain.PaymentStatusPaid {
		t.Errorf("expected Paid, got %s", got)
	}

	// The same event is redelivered: absorbed, still acknowledged.
	result, err = svc.HandleWebhook(context.Background(), payload, sig)
	if err != nil {
		t.Fatalf("redelivery must not error: %v", err)
	}
	if result.Outcome != service.WebhookOutcomeAbsorbed {
		t.Errorf("expected outcome absorbed, got %s", result.Outcome)
	}
	if got := paymentRepo.GetPayment(payment.ID).Status; got != domain.PaymentStatusPaid {
		t.Errorf("status must remain Paid, got %s", got)
	}
	if paymentRepo.CountPayments() != 1 {
		t.Errorf("redelivery must not create records, got %d", paymentRepo.CountPayments())
	}
}

func TestWebhook_FailureTransitionsToFailed(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(&domain.Payment{
		ID:              "pay-1",
		StripePaymentID: "pi_9",
		Status:          domain.PaymentStatusPending,
	})

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	payload, sig := signedEvent("evt_2", stripe.EventPaymentFailed, "pi_9")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != service.WebhookOutcomeApplied {
		t.Errorf("expected outcome applied, got %s", result.Outcome)
	}
	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusFailed {
		t.Errorf("expected Failed, got %s", got)
	}
}

func TestWebhook_UnknownIntentStillAcknowledged(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	payload, sig := signedEvent("evt_3", stripe.EventPaymentFailed, "pi_unknown")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	if err != nil {
		t.Fatalf("unknown intent must not fail the delivery: %v", err)
	}
	if result.Outcome != service.WebhookOutcomeUnknownIntent {
		t.Errorf("expected outcome unknown_intent, got %s", result.Outcome)
	}
	if paymentRepo.CountPayments() != 0 {
		t.Error("an event for an unknown intent must not create a record")
	}
}

func TestWebhook_UnrecognizedEventTypeIgnored(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(&domain.Payment{
		ID:              "pay-1",
		StripePaymentID: "pi_1",
		Status:          domain.PaymentStatusPending,
	})

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	payload, sig := signedEvent("evt_4", "charge.refunded", "pi_1")
	result, err := svc.HandleWebhook(context.Background(), payload, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != service.WebhookOutcomeIgnored {
		t.Errorf("expected outcome ignored, got %s", result.Outcome)
	}
	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusPending {
		t.Errorf("unrecognized events must not mutate records, got %s", got)
	}
}

func TestWebhook_BadSignatureMutatesNothing(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(&domain.Payment{
		ID:              "pay-1",
		StripePaymentID: "pi_1",
		Status:          domain.PaymentStatusPending,
	})

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	payload := []byte(`{"id":"evt_5","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
	badSig := stripe.SignPayload(time.Now(), payload, "whsec_wrong")

	_, err := svc.HandleWebhook(context.Background(), payload, badSig)
	if !errors.Is(err, service.ErrWebhookSignature) {
		t.Fatalf("expected ErrWebhookSignature, got %v", err)
	}
	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusPending {
		t.Errorf("a rejected delivery must not mutate records, got %s", got)
	}
	if paymentRepo.TransitionCallCount != 0 {
		t.Error("no transition may be attempted before verification passes")
	}
}

// ──────────────────────────────────────────────
// ADMIN OVERRIDE AND READS
// ──────────────────────────────────────────────

func TestAdminSetStatus_BypassesTerminalStatuses(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(&domain.Payment{
		ID:              "pay-1",
		StripePaymentID: "pi_1",
		Status:          domain.PaymentStatusPaid,
	})

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	// Paid back to Pending: the override deliberately ignores the
	// forward-only transition graph.
	payment, err := svc.AdminSetStatus(context.Background(), "pay-1", domain.PaymentStatusPending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected Pending after override, got %s", payment.Status)
	}
	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusPending {
		t.Errorf("override must persist, got %s", got)
	}
}

func TestAdminSetStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	paymentRepo.AddPayment(&domain.Payment{ID: "pay-1", Status: domain.PaymentStatusPending})

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	_, err := svc.AdminSetStatus(context.Background(), "pay-1", "Refunded")
	if !errors.Is(err, service.ErrInvalidPaymentStatus) {
		t.Errorf("expected ErrInvalidPaymentStatus, got %v", err)
	}

	_, err = svc.AdminSetStatus(context.Background(), "missing", domain.PaymentStatusPaid)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPayments_Pagination(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	for i := 0; i < 15; i++ {
		paymentRepo.AddPayment(&domain.Payment{
			ID:              fmt.Sprintf("pay-%d", i),
			StripePaymentID: fmt.Sprintf("pi_%d", i),
			Status:          domain.PaymentStatusPending,
		})
	}

	svc := newPaymentService(paymentRepo, NewMockProjectRepository(), NewMockProcessor(nil))

	page1, err := svc.ListPayments(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page1) != 10 {
		t.Errorf("expected 10 payments on page 1, got %d", len(page1))
	}

	page2, err := svc.ListPayments(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("expected 5 payments on page 2, got %d", len(page2))
	}

	// Out-of-range pages return an empty list, not an error.
	page3, err := svc.ListPayments(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page3) != 0 {
		t.Errorf("expected empty page, got %d", len(page3))
	}
}
