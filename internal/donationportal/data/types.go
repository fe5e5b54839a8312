package data

import (
	"time"

	"github.com/shopspring/decimal"
)

type UrgencyLevel string

const (
	UrgencyLow    = UrgencyLevel("low")
	UrgencyMedium = UrgencyLevel("medium")
	UrgencyHigh   = UrgencyLevel("high")
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

type Status string

const (
	NullStatus      = Status("")
	PendingStatus   = Status("pending")
	CompletedStatus = Status("completed")
	FailedStatus    = Status("failed")
)

type Animal struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	Name         string
	Description  string
	Image        string
	MedicalNeeds *string
	UrgencyLevel UrgencyLevel
	TargetAmount *decimal.Decimal
	RaisedAmount decimal.Decimal
	// BaselineAmount is the part of RaisedAmount that was not collected
	// through donations recorded here (seeded or migrated totals).
	BaselineAmount decimal.Decimal
}

type Donation struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ID                string
	AnimalID          string
	DonorName         string
	DonorEmail        string
	Amount            decimal.Decimal
	RazorpayOrderID   string
	RazorpayPaymentID *string
	RazorpaySignature *string
	Status            Status
}
