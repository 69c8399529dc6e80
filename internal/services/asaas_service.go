package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"contrataBack/internal/config"
	"contrataBack/internal/models"
)

const (
	asaasProductionBaseURL = "https://api.asaas.com/v3"
	asaasSandboxBaseURL    = "https://api-sandbox.asaas.com/v3"

	// One retry on transport-level failures, never on business rejections.
	asaasRetryBackoff = 500 * time.Millisecond
)

type AsaasConfig struct {
	APIKey string

	// "production" or "sandbox"; selects the provider base URL.
	Environment string

	// Optional base URL override, used by tests.
	BaseURL string

	Client *http.Client
	Logger *slog.Logger
}

// AsaasService is the HTTP client for the Asaas billing API.
type AsaasService struct {
	apiKey     string
	sandbox    bool
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

func NewAsaasService(cfg AsaasConfig) (*AsaasService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, models.ErrMissingAPIKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sandbox := cfg.Environment != config.EnvProduction
	base := cfg.BaseURL
	if base == "" {
		base = asaasProductionBaseURL
		if sandbox {
			base = asaasSandboxBaseURL
		}
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	s := &AsaasService{
		apiKey:     cfg.APIKey,
		sandbox:    sandbox,
		baseURL:    u,
		httpClient: client,
		logger:     logger,
	}
	logger.Info("Asaas initialized", "baseURL", u.String(), "sandbox", sandbox)
	return s, nil
}

// Sandbox reports whether the client targets the provider's test
// environment.
func (s *AsaasService) Sandbox() bool { return s.sandbox }

// do sends one request to the provider. Network errors and 5xx responses
// are retried exactly once after a short fixed backoff; anything else is
// returned to the caller for classification.
func (s *AsaasService) do(ctx context.Context, method, endpoint string, query url.Values, payload any) (int, []byte, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("asaas: marshal payload: %w", err)
		}
		body = b
	}

	u := *s.baseURL
	u.Path = path.Join(u.Path, endpoint)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			time.Sleep(asaasRetryBackoff)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return 0, nil, fmt.Errorf("asaas: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("access_token", s.apiKey)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			s.logger.Warn("asaas request failed", "endpoint", endpoint, "attempt", attempt+1, "err", err)
			continue
		}
		b, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			s.logger.Warn("asaas response read failed", "endpoint", endpoint, "attempt", attempt+1, "err", readErr)
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = &AsaasError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
			s.logger.Warn("asaas server error", "endpoint", endpoint, "attempt", attempt+1, "status", resp.Status)
			continue
		}
		return resp.StatusCode, b, nil
	}

	detail := ""
	if lastErr != nil {
		detail = lastErr.Error()
	}
	return 0, nil, &models.PaymentError{
		Kind:    models.PaymentProviderUnavailable,
		Message: "Payment provider unavailable, try again later",
		Detail:  detail,
	}
}

// ------- CUSTOMERS -------

type AsaasCustomer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CpfCnpj string `json:"cpfCnpj"`
}

type AsaasCustomerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email,omitempty"`
	CpfCnpj              string `json:"cpfCnpj"`
	MobilePhone          string `json:"mobilePhone,omitempty"`
	NotificationDisabled bool   `json:"notificationDisabled"`
}

// FindCustomersByCpf lists the provider customers registered under the
// given CPF. A non-OK answer on this read path means the provider is
// effectively down for us.
func (s *AsaasService) FindCustomersByCpf(ctx context.Context, cpf string) ([]AsaasCustomer, error) {
	q := url.Values{}
	q.Set("cpfCnpj", cpf)
	status, body, err := s.do(ctx, http.MethodGet, "/customers", q, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &models.PaymentError{
			Kind:    models.PaymentProviderUnavailable,
			Message: "Payment provider unavailable, try again later",
			Detail:  fmt.Sprintf("customer lookup returned %d: %s", status, trim(string(body), 500)),
		}
	}
	var out struct {
		Data       []AsaasCustomer `json:"data"`
		TotalCount int             `json:"totalCount"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("asaas: decode customer list: %w", err)
	}
	return out.Data, nil
}

func (s *AsaasService) CreateCustomer(ctx context.Context, req AsaasCustomerRequest) (string, error) {
	status, body, err := s.do(ctx, http.MethodPost, "/customers", nil, req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", &AsaasError{StatusCode: status, Status: http.StatusText(status), Body: string(body)}
	}
	var out AsaasCustomer
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("asaas: decode customer: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", fmt.Errorf("asaas: create customer returned empty id")
	}
	return out.ID, nil
}

// ------- CHARGES -------

type AsaasCreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	Ccv         string `json:"ccv"`
}

type AsaasCardHolderInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	PostalCode    string `json:"postalCode"`
	AddressNumber string `json:"addressNumber"`
	Phone         string `json:"phone,omitempty"`
}

type AsaasChargeRequest struct {
	Customer             string               `json:"customer"`
	BillingType          string               `json:"billingType"`
	Value                float64              `json:"value"`
	DueDate              string               `json:"dueDate"`
	Description          string               `json:"description,omitempty"`
	ExternalReference    string               `json:"externalReference,omitempty"`
	RemoteIP             string               `json:"remoteIp,omitempty"`
	CreditCard           *AsaasCreditCard     `json:"creditCard,omitempty"`
	CreditCardHolderInfo *AsaasCardHolderInfo `json:"creditCardHolderInfo,omitempty"`
}

type AsaasChargeResponse struct {
	ID                    string  `json:"id"`
	Status                string  `json:"status"`
	Value                 float64 `json:"value"`
	BillingType           string  `json:"billingType"`
	DueDate               string  `json:"dueDate"`
	ExternalReference     string  `json:"externalReference"`
	TransactionReceiptURL string  `json:"transactionReceiptUrl"`
	InvoiceURL            string  `json:"invoiceUrl"`
}

func (s *AsaasService) CreateCharge(ctx context.Context, req AsaasChargeRequest) (*AsaasChargeResponse, error) {
	status, body, err := s.do(ctx, http.MethodPost, "/payments", nil, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("asaas charge raw", "status", status, "body", trim(string(body), 2000))
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, &AsaasError{StatusCode: status, Status: http.StatusText(status), Body: string(body)}
	}
	var out AsaasChargeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("asaas: decode charge: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, fmt.Errorf("asaas: create charge returned empty id")
	}
	return &out, nil
}

type AsaasPixQrCode struct {
	EncodedImage   string `json:"encodedImage"`
	Payload        string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

// GetPixQrCode fetches the QR payload of a PIX charge; the charge
// response itself does not embed it.
func (s *AsaasService) GetPixQrCode(ctx context.Context, chargeID string) (*AsaasPixQrCode, error) {
	endpoint := fmt.Sprintf("/payments/%s/pixQrCode", chargeID)
	status, body, err := s.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &AsaasError{StatusCode: status, Status: http.StatusText(status), Body: string(body)}
	}
	var out AsaasPixQrCode
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("asaas: decode pix qr code: %w", err)
	}
	return &out, nil
}

// ------- SUBSCRIPTIONS -------

type AsaasSubscriptionRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	NextDueDate       string  `json:"nextDueDate"`
	Cycle             string  `json:"cycle"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

type AsaasSubscriptionResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	NextDueDate string `json:"nextDueDate"`
}

func (s *AsaasService) CreateSubscription(ctx context.Context, req AsaasSubscriptionRequest) (*AsaasSubscriptionResponse, error) {
	status, body, err := s.do(ctx, http.MethodPost, "/subscriptions", nil, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, &AsaasError{StatusCode: status, Status: http.StatusText(status), Body: string(body)}
	}
	var out AsaasSubscriptionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("asaas: decode subscription: %w", err)
	}
	return &out, nil
}

// ---------- helpers ----------

func trim(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// AsaasError is a non-2xx answer from the provider. Business rejections
// arrive as a list of coded errors in the body.
type AsaasError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *AsaasError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("asaas error: %s", e.Status)
	}
	return fmt.Sprintf("asaas error: %s: %s", e.Status, bt)
}

// FirstError returns the code and description of the first provider
// error in the body, when present.
func (e *AsaasError) FirstError() (code, description string) {
	if e == nil || strings.TrimSpace(e.Body) == "" {
		return "", ""
	}
	var out struct {
		Errors []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(e.Body), &out); err != nil || len(out.Errors) == 0 {
		return "", ""
	}
	return out.Errors[0].Code, strings.TrimSpace(out.Errors[0].Description)
}
