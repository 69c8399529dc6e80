package services

import (
	"context"
	"log/slog"
	"time"

	"contrataBack/internal/models"
)

// SubscriptionActivator turns an approved card charge into a monthly
// recurring subscription. Best-effort: the charge already went through,
// so a failure here is a reconciliation concern, never a payment failure.
type SubscriptionActivator struct {
	Asaas  *AsaasService
	Logger *slog.Logger
}

// MaybeActivate returns the new subscription id, or "" when the payment
// is not eligible (non-card rail, charge not settled) or activation
// failed.
func (a *SubscriptionActivator) MaybeActivate(ctx context.Context, payment *models.ValidatedPayment, customerID string, charge *models.Charge, now time.Time) string {
	if payment.PaymentType != models.PaymentTypeCard || !charge.Approved() {
		return ""
	}

	resp, err := a.Asaas.CreateSubscription(ctx, AsaasSubscriptionRequest{
		Customer:          customerID,
		BillingType:       models.BillingTypeCreditCard,
		Value:             payment.Plan.Amount,
		NextDueDate:       now.AddDate(0, 0, 30).Format("2006-01-02"),
		Cycle:             "MONTHLY",
		Description:       "Assinatura " + payment.Plan.Title,
		ExternalReference: "subscription_plan_" + payment.Plan.ID,
	})
	if err != nil {
		a.logger().Error("subscription activation failed, reconciliation needed",
			"charge_id", charge.ID, "plan_id", payment.Plan.ID, "err", err)
		return ""
	}
	a.logger().Info("subscription activated", "subscription_id", resp.ID, "charge_id", charge.ID)
	return resp.ID
}

func (a *SubscriptionActivator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
