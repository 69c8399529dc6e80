package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.requestID, app.logRequest, secureHeaders, makeResponseJSON)

	mux := pat.New()

	// Payments
	mux.Post("/payment/process", standardMiddleware.ThenFunc(app.paymentHandler.ProcessPayment))

	mux.Get("/health", standardMiddleware.ThenFunc(app.paymentHandler.Health))

	return mux
}
