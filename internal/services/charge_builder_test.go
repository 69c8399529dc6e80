package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"contrataBack/internal/models"
)

func testBuilder(t *testing.T, f *fakeAsaas) *ChargeBuilder {
	t.Helper()
	return &ChargeBuilder{
		Asaas:  f.service(t),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func validatedPix() *models.ValidatedPayment {
	v, err := ValidatePayment(pixRequest(), testNow)
	if err != nil {
		panic(err)
	}
	return v
}

func validatedCard() *models.ValidatedPayment {
	v, err := ValidatePayment(cardRequest(), testNow)
	if err != nil {
		panic(err)
	}
	return v
}

func TestBuildPayload_CardIncludesCreditCardBlock(t *testing.T) {
	f := newFakeAsaas(t)
	payload := testBuilder(t, f).BuildPayload("cus_1", validatedCard(), testNow)

	if payload.BillingType != models.BillingTypeCreditCard {
		t.Errorf("billing type mismatch: %q", payload.BillingType)
	}
	if payload.CreditCard == nil {
		t.Fatalf("card payment must carry a creditCard block")
	}
	if payload.CreditCard.HolderName != "ANA SILVA" {
		t.Errorf("holder not upper-cased: %q", payload.CreditCard.HolderName)
	}
	if payload.CreditCard.ExpiryMonth != "03" {
		t.Errorf("month not zero-padded: %q", payload.CreditCard.ExpiryMonth)
	}
	if payload.CreditCard.ExpiryYear != "2030" {
		t.Errorf("year not four digits: %q", payload.CreditCard.ExpiryYear)
	}
	if payload.CreditCardHolderInfo == nil {
		t.Fatalf("card payment must carry holder info")
	}
	if payload.CreditCardHolderInfo.PostalCode == "" || payload.CreditCardHolderInfo.AddressNumber == "" {
		t.Errorf("holder info must carry placeholder postal fields")
	}
}

func TestBuildPayload_PixOmitsCreditCardBlock(t *testing.T) {
	f := newFakeAsaas(t)
	payload := testBuilder(t, f).BuildPayload("cus_1", validatedPix(), testNow)

	if payload.BillingType != models.BillingTypePix {
		t.Errorf("billing type mismatch: %q", payload.BillingType)
	}
	if payload.CreditCard != nil || payload.CreditCardHolderInfo != nil {
		t.Errorf("pix payment must not carry card blocks")
	}
	if payload.DueDate != "2025-06-15" {
		t.Errorf("due date must be today: %q", payload.DueDate)
	}
	if payload.ExternalReference != "plan_p1" {
		t.Errorf("external reference mismatch: %q", payload.ExternalReference)
	}
	if payload.RemoteIP != "0.0.0.0" {
		t.Errorf("missing ip must fall back to sentinel: %q", payload.RemoteIP)
	}
}

func TestBuildPayload_KeepsClientIP(t *testing.T) {
	f := newFakeAsaas(t)
	v := validatedPix()
	v.RemoteIP = "203.0.113.9"
	payload := testBuilder(t, f).BuildPayload("cus_1", v, testNow)
	if payload.RemoteIP != "203.0.113.9" {
		t.Errorf("client ip lost: %q", payload.RemoteIP)
	}
}

func TestCreate_PixFetchesQrCode(t *testing.T) {
	f := newFakeAsaas(t)
	f.chargeStatus = "PENDING"

	charge, err := testBuilder(t, f).Create(context.Background(), "cus_1", validatedPix(), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge.ID != "pay_0001" {
		t.Errorf("charge id mismatch: %q", charge.ID)
	}
	if f.qrFetches != 1 {
		t.Errorf("expected one qr fetch, got %d", f.qrFetches)
	}
	if charge.PixQrCode == "" || charge.PixCopyPaste == "" || charge.PixExpiration == "" {
		t.Errorf("pix fields missing: %+v", charge)
	}
}

func TestCreate_CardSkipsQrCode(t *testing.T) {
	f := newFakeAsaas(t)

	charge, err := testBuilder(t, f).Create(context.Background(), "cus_1", validatedCard(), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.qrFetches != 0 {
		t.Errorf("card charge must not fetch a qr code")
	}
	if charge.ReceiptURL == "" {
		t.Errorf("expected receipt url for card charge")
	}
}

func TestCreate_ClassifiesInsufficientFunds(t *testing.T) {
	f := newFakeAsaas(t)
	f.chargeHTTPStatus = 400
	f.chargeErrorBody = `{"errors":[{"code":"insufficient_funds","description":"Saldo insuficiente"}]}`

	_, err := testBuilder(t, f).Create(context.Background(), "cus_1", validatedCard(), testNow)
	var pErr *models.PaymentError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
	if pErr.Kind != models.PaymentInsufficientFunds {
		t.Errorf("unexpected kind: %s", pErr.Kind)
	}
	if pErr.Message != "Insufficient card limit" {
		t.Errorf("unexpected message: %q", pErr.Message)
	}
	if f.chargeCreates != 1 {
		t.Errorf("business rejection must not retry, got %d attempts", f.chargeCreates)
	}
}

func TestCreate_TransportFailureRetriesOnce(t *testing.T) {
	f := newFakeAsaas(t)
	f.chargeHTTPStatus = 500
	f.chargeErrorBody = `{"errors":[{"code":"internal","description":"boom"}]}`

	_, err := testBuilder(t, f).Create(context.Background(), "cus_1", validatedCard(), testNow)
	var pErr *models.PaymentError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
	if pErr.Kind != models.PaymentProviderUnavailable {
		t.Errorf("unexpected kind: %s", pErr.Kind)
	}
	if f.chargeCreates != 2 {
		t.Errorf("expected one retry, got %d attempts", f.chargeCreates)
	}
}
