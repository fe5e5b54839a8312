package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"animal-donations/internal/donationportal/data"
	"animal-donations/internal/donationportal/metrics"
	"animal-donations/pkg/logging"
	"animal-donations/pkg/paymentsig"
)

const receiptPrefix = "donation_"

type NewDonation struct {
	AnimalID   string
	DonorName  string
	DonorEmail string
	Amount     decimal.Decimal
}

// Order is what the checkout widget needs to collect a payment. Amount is
// in minor units as returned by the gateway.
type Order struct {
	OrderID    string
	Amount     int64
	Currency   string
	DonationID string
	GatewayKey string
}

type DonationsConfig struct {
	// KeySecret is the gateway secret used to sign payment callbacks.
	KeySecret string
}

type Donations struct {
	transactionManager TransactionManager
	animals            AnimalRepository
	donations          DonationRepository
	gateway            PaymentGateway
	events             DonationEvents
	cfg                DonationsConfig
	logger             *logging.ZapLogger
	now                func() time.Time
}

func NewDonations(
	cfg DonationsConfig,
	transactionManager TransactionManager,
	animals AnimalRepository,
	donations DonationRepository,
	gateway PaymentGateway,
	events DonationEvents,
	logger *logging.ZapLogger,
) *Donations {
	return &Donations{
		transactionManager: transactionManager,
		animals:            animals,
		donations:          donations,
		gateway:            gateway,
		events:             events,
		cfg:                cfg,
		logger:             logger,
		now:                time.Now,
	}
}

// CreateOrder opens a gateway order and records a pending donation for it.
// The donation is written only after the gateway accepted the order.
func (d *Donations) CreateOrder(ctx context.Context, in NewDonation) (Order, error) {
	if !d.gateway.Configured() {
		return Order{}, ErrConfiguration
	}

	donation, err := buildDonation(in)
	if err != nil {
		return Order{}, err
	}

	if _, err := d.animals.GetAnimal(ctx, donation.AnimalID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return Order{}, fmt.Errorf("animal %s: %w", donation.AnimalID, ErrNotFound)
		}
		return Order{}, fmt.Errorf("%w: error getting animal: %w", ErrStore, err)
	}

	receipt := fmt.Sprintf("%s%d", receiptPrefix, d.now().UnixMilli())
	order, err := d.gateway.CreateOrder(ctx, donation.Amount, receipt)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues("gateway_error").Inc()
		return Order{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	donation.RazorpayOrderID = order.ID
	if err := d.donations.InsertDonation(ctx, &donation); err != nil {
		metrics.OrdersCreated.WithLabelValues("store_error").Inc()
		d.logger.ErrorCtx(ctx, "gateway order left without a donation",
			zap.String("orderID", order.ID),
			zap.Error(err),
		)
		if errors.Is(err, data.ErrForeignKeyViolation) {
			return Order{}, fmt.Errorf("animal %s: %w", donation.AnimalID, ErrNotFound)
		}
		return Order{}, fmt.Errorf("%w: error inserting donation: %w", ErrStore, err)
	}
	metrics.OrdersCreated.WithLabelValues("created").Inc()

	d.logger.InfoCtx(ctx, "donation order created",
		zap.String("donationID", donation.ID),
		zap.String("orderID", order.ID),
		zap.String("amount", donation.Amount.String()),
	)

	return Order{
		OrderID:    order.ID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		DonationID: donation.ID,
		GatewayKey: d.gateway.KeyID(),
	}, nil
}

// VerifyPayment checks the gateway signature of a payment callback and
// settles the matching donation. Repeated calls for a settled order return
// the stored donation unchanged.
func (d *Donations) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (data.Donation, error) {
	if d.cfg.KeySecret == "" {
		return data.Donation{}, ErrConfiguration
	}

	var vs violations
	if orderID == "" {
		vs.add("razorpay_order_id", "is required")
	}
	if paymentID == "" {
		vs.add("razorpay_payment_id", "is required")
	}
	if signature == "" {
		vs.add("razorpay_signature", "is required")
	}
	if err := vs.err(); err != nil {
		return data.Donation{}, err
	}

	if !paymentsig.Verify(d.cfg.KeySecret, orderID, paymentID, signature) {
		metrics.InvalidSignatures.Inc()
		d.logger.WarnCtx(ctx, "payment signature mismatch", zap.String("orderID", orderID))
		return data.Donation{}, ErrInvalidSignature
	}

	var donation data.Donation
	var settled bool
	err := d.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		var err error
		donation, settled, err = d.SettleOrder(ctx, orderID, paymentID, &signature)
		return err
	})
	if err != nil {
		return data.Donation{}, err
	}

	if settled {
		metrics.DonationsSettled.WithLabelValues(metrics.SourceVerification).Inc()
		d.publishCompleted(ctx, donation)
	}
	return donation, nil
}

// SettleOrder marks the donation of orderID completed and credits its amount
// to the animal. It reports false when the donation was already completed.
// Callers must run it inside a transaction.
func (d *Donations) SettleOrder(
	ctx context.Context,
	orderID string,
	paymentID string,
	signature *string,
) (data.Donation, bool, error) {
	donation, err := d.donations.GetDonationByOrderIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return data.Donation{}, false, fmt.Errorf("donation for order %s: %w", orderID, ErrNotFound)
		}
		return data.Donation{}, false, fmt.Errorf("%w: error getting donation: %w", ErrStore, err)
	}
	if donation.Status == data.CompletedStatus {
		d.logger.DebugCtx(ctx, "donation already completed", zap.String("orderID", orderID))
		return donation, false, nil
	}

	updated, err := d.donations.SetDonationStatus(ctx, donation.ID, data.CompletedStatus, &paymentID, signature)
	if err != nil {
		return data.Donation{}, false, fmt.Errorf("%w: error completing donation: %w", ErrStore, err)
	}
	if err := d.animals.IncreaseRaisedAmount(ctx, updated.AnimalID, updated.Amount); err != nil {
		return data.Donation{}, false, fmt.Errorf("%w: error crediting animal: %w", ErrStore, err)
	}
	return updated, true, nil
}

// FailOrder marks a pending donation failed. Donations in any other state are
// returned unchanged with false. Callers must run it inside a transaction.
func (d *Donations) FailOrder(ctx context.Context, orderID string) (data.Donation, bool, error) {
	donation, err := d.donations.GetDonationByOrderIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return data.Donation{}, false, fmt.Errorf("donation for order %s: %w", orderID, ErrNotFound)
		}
		return data.Donation{}, false, fmt.Errorf("%w: error getting donation: %w", ErrStore, err)
	}
	if donation.Status != data.PendingStatus {
		return donation, false, nil
	}
	updated, err := d.donations.SetDonationStatus(ctx, donation.ID, data.FailedStatus, nil, nil)
	if err != nil {
		return data.Donation{}, false, fmt.Errorf("%w: error failing donation: %w", ErrStore, err)
	}
	return updated, true, nil
}

// ListCompletedDonations returns the completed donations of an animal, newest first.
func (d *Donations) ListCompletedDonations(ctx context.Context, animalID string) ([]data.Donation, error) {
	donations, err := d.donations.GetDonationsByAnimal(ctx, animalID, data.CompletedStatus)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return []data.Donation{}, nil
		}
		return nil, fmt.Errorf("%w: error getting donations: %w", ErrStore, err)
	}
	return donations, nil
}

// RecalculateRaisedAmount rebuilds the raised amount of an animal from its
// baseline plus the sum of its completed donations.
func (d *Donations) RecalculateRaisedAmount(ctx context.Context, animalID string) (data.Animal, error) {
	var animal data.Animal
	err := d.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		var err error
		animal, err = d.animals.GetAnimalForUpdate(ctx, animalID)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				return fmt.Errorf("animal %s: %w", animalID, ErrNotFound)
			}
			return fmt.Errorf("%w: error getting animal: %w", ErrStore, err)
		}
		sum, err := d.animals.GetCompletedDonationsSum(ctx, animalID)
		if err != nil {
			return fmt.Errorf("%w: error summing donations: %w", ErrStore, err)
		}
		value := animal.BaselineAmount.Add(sum)
		if value.Equal(animal.RaisedAmount) {
			return nil
		}
		if err := d.animals.SetRaisedAmount(ctx, animalID, value); err != nil {
			return fmt.Errorf("%w: error setting raised amount: %w", ErrStore, err)
		}
		d.logger.InfoCtx(ctx, "raised amount corrected",
			zap.String("animalID", animalID),
			zap.String("from", animal.RaisedAmount.String()),
			zap.String("to", value.String()),
		)
		animal.RaisedAmount = value
		return nil
	})
	if err != nil {
		return data.Animal{}, err
	}
	return animal, nil
}

// RecalculateAllRaisedAmounts runs RecalculateRaisedAmount for every animal.
func (d *Donations) RecalculateAllRaisedAmounts(ctx context.Context) ([]data.Animal, error) {
	animals, err := d.animals.GetAllAnimals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: error getting animals: %w", ErrStore, err)
	}
	res := make([]data.Animal, 0, len(animals))
	for _, animal := range animals {
		recalculated, err := d.RecalculateRaisedAmount(ctx, animal.ID)
		if err != nil {
			return res, err
		}
		res = append(res, recalculated)
	}
	return res, nil
}

func (d *Donations) PublishCompleted(ctx context.Context, donation data.Donation) {
	d.publishCompleted(ctx, donation)
}

func (d *Donations) PublishFailed(ctx context.Context, donation data.Donation) {
	if err := d.events.DonationFailed(ctx, donation); err != nil {
		d.logger.WarnCtx(ctx, "failed to publish donation event",
			zap.String("donationID", donation.ID),
			zap.Error(err),
		)
	}
}

func (d *Donations) publishCompleted(ctx context.Context, donation data.Donation) {
	if err := d.events.DonationCompleted(ctx, donation); err != nil {
		d.logger.WarnCtx(ctx, "failed to publish donation event",
			zap.String("donationID", donation.ID),
			zap.Error(err),
		)
	}
}

func buildDonation(in NewDonation) (data.Donation, error) {
	var vs violations

	animalID := strings.TrimSpace(in.AnimalID)
	if animalID == "" {
		vs.add("animalId", "is required")
	}
	donorName := strings.TrimSpace(in.DonorName)
	if donorName == "" {
		vs.add("donorName", "is required")
	}
	donorEmail := strings.TrimSpace(in.DonorEmail)
	if !validEmail(donorEmail) {
		vs.add("donorEmail", "must be a valid email address")
	}
	switch {
	case !in.Amount.IsPositive():
		vs.add("amount", "must be greater than 0")
	case !validMoneyPlaces(in.Amount):
		vs.add("amount", "must have at most 2 decimal places")
	case !withinMaxAmount(in.Amount):
		vs.add("amount", "must not exceed "+maxAmount.String())
	}

	if err := vs.err(); err != nil {
		return data.Donation{}, err
	}

	return data.Donation{
		ID:         uuid.NewString(),
		AnimalID:   animalID,
		DonorName:  donorName,
		DonorEmail: donorEmail,
		Amount:     in.Amount,
		Status:     data.PendingStatus,
	}, nil
}
