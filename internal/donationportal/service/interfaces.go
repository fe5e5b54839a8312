package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"animal-donations/internal/common/gatewayprotocol"
	"animal-donations/internal/donationportal/data"
)

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type AnimalRepository interface {
	InsertAnimal(ctx context.Context, animal *data.Animal) error
	GetAnimal(ctx context.Context, id string) (data.Animal, error)
	GetAnimalForUpdate(ctx context.Context, id string) (data.Animal, error)
	GetAllAnimals(ctx context.Context) ([]data.Animal, error)
	IncreaseRaisedAmount(ctx context.Context, animalID string, delta decimal.Decimal) error
	SetRaisedAmount(ctx context.Context, animalID string, value decimal.Decimal) error
	GetCompletedDonationsSum(ctx context.Context, animalID string) (decimal.Decimal, error)
}

type DonationRepository interface {
	InsertDonation(ctx context.Context, donation *data.Donation) error
	GetDonationByOrderIDForUpdate(ctx context.Context, orderID string) (data.Donation, error)
	SetDonationStatus(
		ctx context.Context,
		donationID string,
		status data.Status,
		paymentID *string,
		signature *string,
	) (data.Donation, error)
	GetDonationsByAnimal(ctx context.Context, animalID string, status data.Status) ([]data.Donation, error)
	GetPendingDonations(ctx context.Context, createdBefore time.Time, limit int) ([]data.Donation, error)
}

type PaymentGateway interface {
	Configured() bool
	KeyID() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (gatewayprotocol.Order, error)
}

// DonationEvents is notified after a donation changes state and the change
// is committed.
type DonationEvents interface {
	DonationCompleted(ctx context.Context, donation data.Donation) error
	DonationFailed(ctx context.Context, donation data.Donation) error
}
