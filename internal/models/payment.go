package models

// Payment types accepted by the checkout endpoint.
const (
	PaymentTypeCard = "cartao"
	PaymentTypePix  = "pix"
)

// Charge statuses returned by Asaas.
const (
	ChargeStatusConfirmed = "CONFIRMED"
	ChargeStatusReceived  = "RECEIVED"
	ChargeStatusPending   = "PENDING"
)

// Billing types on the provider side.
const (
	BillingTypePix        = "PIX"
	BillingTypeCreditCard = "CREDIT_CARD"
)

type PlanData struct {
	ID     string  `json:"id"`
	Title  string  `json:"titulo"`
	Amount float64 `json:"valor"`
}

type CustomerData struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	Cpf   string `json:"cpf"`
	Phone string `json:"telefone"`
}

// CardData carries the raw card fields as typed by the user.
type CardData struct {
	Number     string `json:"numero"`
	HolderName string `json:"nome"`
	Expiry     string `json:"validade"` // MM/YY or MM/YYYY
	Cvv        string `json:"cvv"`
}

// PaymentRequest is the checkout request body.
type PaymentRequest struct {
	PaymentType  string       `json:"paymentType"`
	PlanData     PlanData     `json:"planData"`
	CustomerData CustomerData `json:"customerData"`
	CardData     *CardData    `json:"cardData,omitempty"`
	ClientIP     string       `json:"clientIp,omitempty"`
}

// ValidatedPayment is the normalized form produced by validation. CPF and
// card number hold digits only; the expiry is parsed into month and
// 4-digit year.
type ValidatedPayment struct {
	PaymentType string
	Plan        PlanData
	Customer    CustomerData
	Card        *ValidatedCard
	RemoteIP    string
}

type ValidatedCard struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	Cvv         string
}

// ProviderCustomer is a reference into the provider's customer registry.
type ProviderCustomer struct {
	ID  string `json:"id"`
	Cpf string `json:"cpfCnpj"`
}

// Charge mirrors the provider charge record; status is authoritative from
// the provider response and never mutated locally.
type Charge struct {
	ID                string
	Status            string
	Value             float64
	BillingType       string
	DueDate           string
	ExternalReference string
	ReceiptURL        string

	// PIX-only fields, filled from the QR code lookup.
	PixQrCode     string
	PixCopyPaste  string
	PixExpiration string
}

// Approved reports whether the charge was settled immediately.
func (c *Charge) Approved() bool {
	return c.Status == ChargeStatusConfirmed || c.Status == ChargeStatusReceived
}

// Subscription is the recurring billing record created for approved card
// charges.
type Subscription struct {
	ID                string
	Cycle             string
	NextDueDate       string
	ExternalReference string
}

// PaymentResult is the single response shape of the payment pipeline.
type PaymentResult struct {
	Success           bool    `json:"success"`
	PaymentID         string  `json:"paymentId,omitempty"`
	Status            string  `json:"status,omitempty"`
	Value             float64 `json:"value,omitempty"`
	SubscriptionID    string  `json:"subscriptionId,omitempty"`
	PixQrCode         string  `json:"pixQrCode,omitempty"`
	PixCopyPaste      string  `json:"pixCopyPaste,omitempty"`
	PixExpirationDate string  `json:"pixExpirationDate,omitempty"`
	Approved          *bool   `json:"approved,omitempty"`
	ReceiptURL        string  `json:"transactionReceiptUrl,omitempty"`
	Message           string  `json:"message,omitempty"`
}

// PaymentFailure is the error response body of the payment endpoint.
type PaymentFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
