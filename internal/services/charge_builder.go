package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"contrataBack/internal/models"
)

// Placeholder billing address: checkout does not collect one, and the
// provider requires the holder info block to be complete.
const (
	holderPostalCode    = "01310-930"
	holderAddressNumber = "0"
)

// ChargeBuilder assembles the rail-specific charge payload and submits it
// to the provider.
type ChargeBuilder struct {
	Asaas  *AsaasService
	Logger *slog.Logger
}

// BuildPayload assembles the provider charge request. Card payments carry
// the creditCard and creditCardHolderInfo blocks; PIX payments carry
// neither.
func (b *ChargeBuilder) BuildPayload(customerID string, payment *models.ValidatedPayment, now time.Time) AsaasChargeRequest {
	billingType := models.BillingTypePix
	if payment.PaymentType == models.PaymentTypeCard {
		billingType = models.BillingTypeCreditCard
	}

	remoteIP := payment.RemoteIP
	if remoteIP == "" {
		remoteIP = "0.0.0.0"
	}

	payload := AsaasChargeRequest{
		Customer:          customerID,
		BillingType:       billingType,
		Value:             payment.Plan.Amount,
		DueDate:           now.Format("2006-01-02"),
		Description:       "Assinatura " + payment.Plan.Title,
		ExternalReference: "plan_" + payment.Plan.ID,
		RemoteIP:          remoteIP,
	}

	if card := payment.Card; card != nil {
		payload.CreditCard = &AsaasCreditCard{
			HolderName:  strings.ToUpper(card.HolderName),
			Number:      card.Number,
			ExpiryMonth: fmt.Sprintf("%02d", card.ExpiryMonth),
			ExpiryYear:  strconv.Itoa(card.ExpiryYear),
			Ccv:         card.Cvv,
		}
		payload.CreditCardHolderInfo = &AsaasCardHolderInfo{
			Name:          payment.Customer.Name,
			Email:         payment.Customer.Email,
			CpfCnpj:       payment.Customer.Cpf,
			PostalCode:    holderPostalCode,
			AddressNumber: holderAddressNumber,
			Phone:         digitsOnly(payment.Customer.Phone),
		}
	}
	return payload
}

// Create submits the charge. Business rejections come back classified;
// for PIX charges the QR payload is fetched afterwards, and a QR fetch
// failure degrades the result instead of failing the payment.
func (b *ChargeBuilder) Create(ctx context.Context, customerID string, payment *models.ValidatedPayment, now time.Time) (*models.Charge, error) {
	payload := b.BuildPayload(customerID, payment, now)

	resp, err := b.Asaas.CreateCharge(ctx, payload)
	if err != nil {
		var apiErr *AsaasError
		if errors.As(err, &apiErr) {
			code, desc := apiErr.FirstError()
			return nil, ClassifyProviderError(code, desc, b.Asaas.Sandbox())
		}
		return nil, err
	}

	charge := &models.Charge{
		ID:                resp.ID,
		Status:            resp.Status,
		Value:             resp.Value,
		BillingType:       resp.BillingType,
		DueDate:           resp.DueDate,
		ExternalReference: resp.ExternalReference,
		ReceiptURL:        resp.TransactionReceiptURL,
	}

	if payment.PaymentType == models.PaymentTypePix {
		qr, err := b.Asaas.GetPixQrCode(ctx, resp.ID)
		if err != nil {
			b.logger().Warn("pix qr code fetch failed", "charge_id", resp.ID, "err", err)
		} else {
			charge.PixQrCode = qr.EncodedImage
			charge.PixCopyPaste = qr.Payload
			charge.PixExpiration = qr.ExpirationDate
		}
	}
	return charge, nil
}

func (b *ChargeBuilder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
