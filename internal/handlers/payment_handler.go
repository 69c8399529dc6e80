package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"contrataBack/internal/models"
	"contrataBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(s *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: s}
}

// ProcessPayment runs the checkout pipeline. Success answers 200 with the
// pipeline result; any pipeline failure answers 400 with a classified,
// user-facing message — raw provider error shapes never leave here.
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeFailure(w, http.StatusInternalServerError, "payment service not initialized")
		return
	}

	var req models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.ClientIP == "" {
		req.ClientIP = clientIP(r)
	}

	result, err := h.Service.Process(r.Context(), req)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, userMessage(err))
		return
	}
	_ = json.NewEncoder(w).Encode(result)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.PaymentFailure{Success: false, Error: message})
}

// userMessage extracts the user-facing text from a pipeline error.
func userMessage(err error) string {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var pErr *models.PaymentError
	if errors.As(err, &pErr) {
		return pErr.Message
	}
	return "Failed to process payment"
}

// clientIP falls back to the forwarded-for chain, then the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	return host
}

// Health is the liveness endpoint.
func (h *PaymentHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
