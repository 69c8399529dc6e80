package models

import (
	"errors"
	"fmt"
)

var ErrMissingAPIKey = errors.New("models: asaas api key is not configured")

// ValidationKind identifies which request field failed validation.
type ValidationKind string

const (
	ValidationInvalidCpf         ValidationKind = "invalid_cpf"
	ValidationInvalidPaymentType ValidationKind = "invalid_payment_type"
	ValidationInvalidCardNumber  ValidationKind = "invalid_card_number"
	ValidationInvalidCvv         ValidationKind = "invalid_cvv"
	ValidationInvalidExpiry      ValidationKind = "invalid_expiry"
	ValidationExpiredCard        ValidationKind = "expired_card"
)

// ValidationError is a per-request fatal error raised before any provider
// call is made. Never retried.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Kind, e.Message)
}

// PaymentErrorKind is the stable taxonomy exposed to callers for
// provider-originated failures.
type PaymentErrorKind string

const (
	PaymentProviderUnavailable PaymentErrorKind = "provider_unavailable"
	PaymentProviderRejected    PaymentErrorKind = "provider_rejected"
	PaymentCardRejected        PaymentErrorKind = "card_rejected"
	PaymentInsufficientFunds   PaymentErrorKind = "insufficient_funds"
	PaymentCardExpired         PaymentErrorKind = "card_expired"
	PaymentInvalidCardNumber   PaymentErrorKind = "invalid_card_number"
)

// PaymentError is a terminal, classified provider failure. Message is the
// user-facing text; Detail keeps the raw provider description for logs.
type PaymentError struct {
	Kind    PaymentErrorKind
	Message string
	Detail  string
}

func (e *PaymentError) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("payment: %s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("payment: %s: %s", e.Kind, e.Message)
}
