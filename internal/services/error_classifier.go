package services

import (
	"strings"

	"contrataBack/internal/models"
)

type classification struct {
	Kind    models.PaymentErrorKind
	Message string
}

// Known provider rejection codes. Unknown codes fall through to a generic
// rejection carrying the raw description.
var providerErrorTable = map[string]classification{
	"invalid_creditCard":  {models.PaymentCardRejected, "Transaction not authorized; check card limit"},
	"insufficient_funds":  {models.PaymentInsufficientFunds, "Insufficient card limit"},
	"card_expired":        {models.PaymentCardExpired, "Card expired"},
	"invalid_card_number": {models.PaymentInvalidCardNumber, "Invalid card number"},
}

const (
	sandboxCardNotice      = "Transaction not authorized; in sandbox only the provider's test cards are accepted"
	genericRejectedMessage = "Payment refused by the provider"
)

// ClassifyProviderError maps a provider rejection onto the stable error
// taxonomy. Deterministic: the same code always yields the same kind and
// message, regardless of the raw description.
func ClassifyProviderError(code, description string, sandbox bool) *models.PaymentError {
	if c, ok := providerErrorTable[code]; ok {
		message := c.Message
		if sandbox && code == "invalid_creditCard" {
			message = sandboxCardNotice
		}
		return &models.PaymentError{Kind: c.Kind, Message: message, Detail: description}
	}

	message := strings.TrimSpace(description)
	if message == "" {
		message = genericRejectedMessage
	}
	return &models.PaymentError{Kind: models.PaymentProviderRejected, Message: message, Detail: description}
}
