package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"contrataBack/internal/models"
)

// CustomerResolver looks up the provider customer for a CPF and creates
// one when absent. The provider owns the record; this is read-or-create
// only, so calling it twice for the same CPF is safe.
type CustomerResolver struct {
	Asaas  *AsaasService
	Logger *slog.Logger
}

func (r *CustomerResolver) Resolve(ctx context.Context, customer models.CustomerData) (string, error) {
	logger := r.logger().With("op", "ResolveCustomer")

	found, err := r.Asaas.FindCustomersByCpf(ctx, customer.Cpf)
	if err != nil {
		return "", err
	}
	if len(found) > 0 {
		if len(found) > 1 {
			// Upstream data quality issue: the provider holds duplicates
			// for this CPF. First result wins, deterministically.
			logger.Warn("multiple provider customers for cpf",
				"count", len(found), "customer_id", found[0].ID)
		}
		return found[0].ID, nil
	}

	id, err := r.Asaas.CreateCustomer(ctx, AsaasCustomerRequest{
		Name:                 strings.ToUpper(strings.TrimSpace(customer.Name)),
		Email:                strings.ToLower(strings.TrimSpace(customer.Email)),
		CpfCnpj:              customer.Cpf,
		MobilePhone:          digitsOnly(customer.Phone),
		NotificationDisabled: true,
	})
	if err != nil {
		var apiErr *AsaasError
		if errors.As(err, &apiErr) {
			_, desc := apiErr.FirstError()
			if desc == "" {
				desc = "Provider refused to create the customer record"
			}
			return "", &models.PaymentError{
				Kind:    models.PaymentProviderRejected,
				Message: desc,
				Detail:  trim(apiErr.Body, 500),
			}
		}
		return "", err
	}
	logger.Info("provider customer created", "customer_id", id)
	return id, nil
}

func (r *CustomerResolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
