package services

import (
	"context"
	"log/slog"
	"time"

	"contrataBack/internal/models"
)

// Pipeline stages, in execution order. Every stage short-circuits the
// pipeline on failure except subscription activation, whose failure is
// absorbed.
const (
	StageValidating             = "validating"
	StageResolvingCustomer      = "resolving_customer"
	StageCreatingCharge         = "creating_charge"
	StageActivatingSubscription = "activating_subscription"
	StageDone                   = "done"
)

// PaymentService sequences the payment pipeline: validate, resolve the
// provider customer, create the charge, then (card rail, settled charge
// only) activate the subscription. Stateless: all state lives in the
// provider, so instances can run concurrently without coordination.
type PaymentService struct {
	Resolver      *CustomerResolver
	Charges       *ChargeBuilder
	Subscriptions *SubscriptionActivator
	Logger        *slog.Logger

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

func NewPaymentService(asaas *AsaasService, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		Resolver:      &CustomerResolver{Asaas: asaas, Logger: logger},
		Charges:       &ChargeBuilder{Asaas: asaas, Logger: logger},
		Subscriptions: &SubscriptionActivator{Asaas: asaas, Logger: logger},
		Logger:        logger,
	}
}

func (s *PaymentService) Process(ctx context.Context, req models.PaymentRequest) (*models.PaymentResult, error) {
	now := s.now()
	logger := s.logger().With("op", "ProcessPayment", "plan_id", req.PlanData.ID)

	payment, err := ValidatePayment(req, now)
	if err != nil {
		return nil, s.fail(logger, StageValidating, err)
	}

	customerID, err := s.Resolver.Resolve(ctx, payment.Customer)
	if err != nil {
		return nil, s.fail(logger, StageResolvingCustomer, err)
	}

	// The charge must not be left in an unknown state by a client-side
	// abort: once submission starts, it runs to completion.
	chargeCtx := context.WithoutCancel(ctx)

	charge, err := s.Charges.Create(chargeCtx, customerID, payment, now)
	if err != nil {
		return nil, s.fail(logger, StageCreatingCharge, err)
	}

	subscriptionID := s.Subscriptions.MaybeActivate(chargeCtx, payment, customerID, charge, now)

	result := &models.PaymentResult{
		Success:        true,
		PaymentID:      charge.ID,
		Status:         charge.Status,
		Value:          charge.Value,
		SubscriptionID: subscriptionID,
	}
	switch payment.PaymentType {
	case models.PaymentTypePix:
		// Confirmation is asynchronous on this rail; approved stays unset.
		result.PixQrCode = charge.PixQrCode
		result.PixCopyPaste = charge.PixCopyPaste
		result.PixExpirationDate = charge.PixExpiration
	case models.PaymentTypeCard:
		approved := charge.Approved()
		result.Approved = &approved
		result.ReceiptURL = charge.ReceiptURL
	}

	logger.Info("payment processed", "stage", StageDone,
		"charge_id", charge.ID, "status", charge.Status,
		"subscription_id", subscriptionID)
	return result, nil
}

func (s *PaymentService) fail(logger *slog.Logger, stage string, err error) error {
	logger.Warn("payment failed", "stage", stage, "err", err)
	return err
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PaymentService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
