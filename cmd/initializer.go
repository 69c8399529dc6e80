package main

import (
	"log"
	"log/slog"
	"os"

	"contrataBack/internal/config"
	"contrataBack/internal/handlers"
	"contrataBack/internal/services"
)

type application struct {
	errorLog       *log.Logger
	infoLog        *log.Logger
	paymentHandler *handlers.PaymentHandler
}

func initializeApp(cfg config.Config, errorLog, infoLog *log.Logger) (*application, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	asaas, err := services.NewAsaasService(services.AsaasConfig{
		APIKey:      cfg.Asaas.APIKey,
		Environment: cfg.Asaas.Environment,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	paymentService := services.NewPaymentService(asaas, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		paymentHandler: paymentHandler,
	}, nil
}
