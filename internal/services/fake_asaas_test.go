package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeAsaas is an in-process stand-in for the provider API used across
// the pipeline tests. Counters record how often each endpoint was hit so
// tests can assert on call behaviour, not just results.
type fakeAsaas struct {
	mu sync.Mutex

	customers []AsaasCustomer

	lookups             int
	customerCreates     int
	chargeCreates       int
	qrFetches           int
	subscriptionCreates int

	lastCustomer     AsaasCustomerRequest
	lastCharge       AsaasChargeRequest
	lastSubscription AsaasSubscriptionRequest

	chargeStatus             string
	chargeHTTPStatus         int
	chargeErrorBody          string
	lookupHTTPStatus         int
	customerCreateHTTPStatus int
	customerCreateErrorBody  string
	subscriptionHTTPStatus   int

	srv *httptest.Server
}

func newFakeAsaas(t *testing.T) *fakeAsaas {
	t.Helper()
	f := &fakeAsaas{chargeStatus: "CONFIRMED"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /customers", f.handleLookup)
	mux.HandleFunc("POST /customers", f.handleCreateCustomer)
	mux.HandleFunc("POST /payments", f.handleCreateCharge)
	mux.HandleFunc("GET /payments/{id}/pixQrCode", f.handlePixQrCode)
	mux.HandleFunc("POST /subscriptions", f.handleCreateSubscription)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAsaas) service(t *testing.T) *AsaasService {
	t.Helper()
	svc, err := NewAsaasService(AsaasConfig{
		APIKey:  "test-key",
		BaseURL: f.srv.URL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewAsaasService: %v", err)
	}
	return svc
}

func (f *fakeAsaas) providerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups + f.customerCreates + f.chargeCreates + f.qrFetches + f.subscriptionCreates
}

func (f *fakeAsaas) handleLookup(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.lookupHTTPStatus != 0 {
		w.WriteHeader(f.lookupHTTPStatus)
		_, _ = w.Write([]byte(`{"errors":[{"code":"internal","description":"provider down"}]}`))
		return
	}
	cpf := r.URL.Query().Get("cpfCnpj")
	matched := make([]AsaasCustomer, 0)
	for _, c := range f.customers {
		if c.CpfCnpj == cpf {
			matched = append(matched, c)
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":       matched,
		"totalCount": len(matched),
	})
}

func (f *fakeAsaas) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerCreates++
	if f.customerCreateHTTPStatus != 0 {
		w.WriteHeader(f.customerCreateHTTPStatus)
		_, _ = w.Write([]byte(f.customerCreateErrorBody))
		return
	}
	var req AsaasCustomerRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.lastCustomer = req

	c := AsaasCustomer{
		ID:      fmt.Sprintf("cus_%06d", len(f.customers)+1),
		Name:    req.Name,
		CpfCnpj: req.CpfCnpj,
	}
	f.customers = append(f.customers, c)
	_ = json.NewEncoder(w).Encode(c)
}

func (f *fakeAsaas) handleCreateCharge(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chargeCreates++
	if f.chargeHTTPStatus != 0 {
		w.WriteHeader(f.chargeHTTPStatus)
		_, _ = w.Write([]byte(f.chargeErrorBody))
		return
	}
	var req AsaasChargeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.lastCharge = req

	resp := AsaasChargeResponse{
		ID:                "pay_0001",
		Status:            f.chargeStatus,
		Value:             req.Value,
		BillingType:       req.BillingType,
		DueDate:           req.DueDate,
		ExternalReference: req.ExternalReference,
	}
	if req.BillingType == "CREDIT_CARD" {
		resp.TransactionReceiptURL = "https://provider.test/receipt/pay_0001"
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeAsaas) handlePixQrCode(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qrFetches++
	_ = json.NewEncoder(w).Encode(AsaasPixQrCode{
		EncodedImage:   "iVBORw0KGgoFAKEQR",
		Payload:        "00020126330014br.gov.bcb.pix0111fakepayload",
		ExpirationDate: "2030-01-01 23:59:59",
	})
}

func (f *fakeAsaas) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptionCreates++
	if f.subscriptionHTTPStatus != 0 {
		w.WriteHeader(f.subscriptionHTTPStatus)
		_, _ = w.Write([]byte(`{"errors":[{"code":"internal","description":"subscription backend down"}]}`))
		return
	}
	var req AsaasSubscriptionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.lastSubscription = req
	_ = json.NewEncoder(w).Encode(AsaasSubscriptionResponse{
		ID:          "sub_0001",
		Status:      "ACTIVE",
		NextDueDate: req.NextDueDate,
	})
}
