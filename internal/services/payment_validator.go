package services

import (
	"strconv"
	"strings"
	"time"

	"contrataBack/internal/models"
)

// ValidatePayment normalizes and validates a checkout request. Pure: no
// provider calls, no side effects. CPF and card fields come back with
// digits only and the expiry parsed into month and 4-digit year.
func ValidatePayment(req models.PaymentRequest, now time.Time) (*models.ValidatedPayment, error) {
	if req.PaymentType != models.PaymentTypeCard && req.PaymentType != models.PaymentTypePix {
		return nil, &models.ValidationError{
			Kind:    models.ValidationInvalidPaymentType,
			Message: "Unsupported payment type",
		}
	}

	cpf := digitsOnly(req.CustomerData.Cpf)
	if len(cpf) != 11 {
		return nil, &models.ValidationError{
			Kind:    models.ValidationInvalidCpf,
			Message: "CPF must have 11 digits",
		}
	}

	v := &models.ValidatedPayment{
		PaymentType: req.PaymentType,
		Plan:        req.PlanData,
		Customer:    req.CustomerData,
		RemoteIP:    strings.TrimSpace(req.ClientIP),
	}
	v.Customer.Cpf = cpf

	if req.PaymentType == models.PaymentTypeCard {
		card, err := validateCard(req.CardData, now)
		if err != nil {
			return nil, err
		}
		v.Card = card
	}
	return v, nil
}

func validateCard(card *models.CardData, now time.Time) (*models.ValidatedCard, error) {
	if card == nil {
		return nil, &models.ValidationError{
			Kind:    models.ValidationInvalidCardNumber,
			Message: "Card data is required",
		}
	}

	number := digitsOnly(card.Number)
	if len(number) < 13 || len(number) > 19 {
		return nil, &models.ValidationError{
			Kind:    models.ValidationInvalidCardNumber,
			Message: "Invalid card number",
		}
	}

	cvv := digitsOnly(card.Cvv)
	if len(cvv) < 3 || len(cvv) > 4 {
		return nil, &models.ValidationError{
			Kind:    models.ValidationInvalidCvv,
			Message: "Invalid CVV",
		}
	}

	month, year, err := parseExpiry(card.Expiry)
	if err != nil {
		return nil, err
	}
	if year < now.Year() {
		return nil, &models.ValidationError{
			Kind:    models.ValidationExpiredCard,
			Message: "Card expired",
		}
	}

	return &models.ValidatedCard{
		Number:      number,
		HolderName:  strings.TrimSpace(card.HolderName),
		ExpiryMonth: month,
		ExpiryYear:  year,
		Cvv:         cvv,
	}, nil
}

// parseExpiry accepts MM/YY and MM/YYYY. Two-digit years are taken as
// 20xx.
func parseExpiry(expiry string) (month, year int, err error) {
	invalid := &models.ValidationError{
		Kind:    models.ValidationInvalidExpiry,
		Message: "Invalid card expiry",
	}

	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 {
		return 0, 0, invalid
	}
	month, merr := strconv.Atoi(strings.TrimSpace(parts[0]))
	if merr != nil || month < 1 || month > 12 {
		return 0, 0, invalid
	}
	yearStr := strings.TrimSpace(parts[1])
	year, yerr := strconv.Atoi(yearStr)
	if yerr != nil || year < 0 {
		return 0, 0, invalid
	}
	if len(yearStr) <= 2 {
		year += 2000
	}
	return month, year, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
