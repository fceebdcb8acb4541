package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// ValidPaymentStatus reports whether s is one of the enumerated statuses.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// SupportedCurrencies is the set of currencies accepted for payments,
// keyed by lowercase ISO code.
var SupportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"gbp": true,
	"inr": true,
	"aud": true,
}

// Payment represents a payment initiated against a project.
//
// StripePaymentID is the processor-assigned intent id. It is set exactly
// once at creation and is the correlation key for webhook events; lookups
// by it match at most one payment.
type Payment struct {
	ID                 string
	ProjectID          string
	Amount             float64 // major units
	Currency           string
	Status             PaymentStatus
	StripePaymentID    string
	StripeClientSecret string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Terminal reports whether the payment has reached a terminal status.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusFailed
}
