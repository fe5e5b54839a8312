package clientprotocol

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Null      DonationStatus = ""
	Pending   DonationStatus = "pending"
	Completed DonationStatus = "completed"
	Failed    DonationStatus = "failed"
)

type DonationStatus string

// Amount is a decimal that is written as a JSON number. Both numbers and
// numeric strings are accepted on input.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Response is the envelope of every API answer.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Animal struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	MedicalNeeds *string   `json:"medicalNeeds,omitempty"`
	UrgencyLevel string    `json:"urgencyLevel"`
	TargetAmount *Amount   `json:"targetAmount,omitempty"`
	RaisedAmount Amount    `json:"raisedAmount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateAnimalRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	MedicalNeeds *string `json:"medicalNeeds"`
	UrgencyLevel string  `json:"urgencyLevel"`
	TargetAmount *Amount `json:"targetAmount"`
	RaisedAmount *Amount `json:"raisedAmount"`
}

type Donation struct {
	ID                string         `json:"_id"`
	AnimalID          string         `json:"animalId"`
	DonorName         string         `json:"donorName"`
	DonorEmail        string         `json:"donorEmail"`
	Amount            Amount         `json:"amount"`
	RazorpayOrderID   string         `json:"razorpayOrderId"`
	RazorpayPaymentID *string        `json:"razorpayPaymentId,omitempty"`
	RazorpaySignature *string        `json:"razorpaySignature,omitempty"`
	Status            DonationStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type CreateOrderRequest struct {
	AnimalID   string `json:"animalId"`
	DonorName  string `json:"donorName"`
	DonorEmail string `json:"donorEmail"`
	Amount     Amount `json:"amount"`
}

// CreateOrderResponse.Amount is in minor units, as the checkout widget expects.
// KeyID duplicates GatewayKey for older clients.
type CreateOrderResponse struct {
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	DonationID string `json:"donationId"`
	GatewayKey string `json:"gatewayKey"`
	KeyID      string `json:"keyId"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}
