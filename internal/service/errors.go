package service

import "errors"

var (
	// ErrInvalidProjectID is returned when a project ID is empty.
	ErrInvalidProjectID = errors.New("invalid project id")

	// ErrInvalidPaymentID is returned when a payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPaymentAmount is returned when a payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("amount must be greater than zero")

	// ErrInvalidCurrency is returned when a currency is not in the supported set.
	ErrInvalidCurrency = errors.New("unsupported currency")

	// ErrInvalidPaymentStatus is returned when a status is not one of the enumerated values.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrPaymentProcessor is returned when the payment processor call fails.
	ErrPaymentProcessor = errors.New("payment processor unavailable")

	// ErrWebhookSignature is returned when a webhook payload fails verification.
	ErrWebhookSignature = errors.New("webhook signature verification failed")

	// ErrMissingProjectFields is returned when a required project field is absent.
	ErrMissingProjectFields = errors.New("title, deadline, and budget are required")

	// ErrEmptyProjectUpdate is returned when an update provides no fields.
	ErrEmptyProjectUpdate = errors.New("at least one field must be provided for update")

	// ErrInvalidProjectStatus is returned when a project status is not one of the enumerated values.
	ErrInvalidProjectStatus = errors.New("invalid project status")

	// ErrMissingUserFields is returned when a required registration field is absent.
	ErrMissingUserFields = errors.New("name, email, password, and role are required")

	// ErrInvalidEmail is returned when an email fails format validation.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidRole is returned when a role is not one of the enumerated values.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials is returned when login password verification fails.
	ErrInvalidCredentials = errors.New("invalid password")

	// ErrInvalidResetToken is returned when a password-reset token is
	// malformed, expired, or already redeemed.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrEmptyImport is returned when a CSV import contains no valid rows.
	ErrEmptyImport = errors.New("no valid rows in uploaded file")

	// ErrNoProjects is returned when a listing or export matches nothing.
	ErrNoProjects = errors.New("no projects found")
)
