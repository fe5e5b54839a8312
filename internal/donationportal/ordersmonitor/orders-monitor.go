package ordersmonitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"animal-donations/internal/common/gatewayprotocol"
	"animal-donations/internal/donationportal/data"
	"animal-donations/internal/donationportal/metrics"
	"animal-donations/internal/donationportal/paymentgateway"
	"animal-donations/pkg/logging"
	"animal-donations/pkg/threadsafe"
)

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type DonationsRepository interface {
	GetPendingDonations(ctx context.Context, createdBefore time.Time, limit int) ([]data.Donation, error)
	GetDonationByOrderIDForUpdate(ctx context.Context, orderID string) (data.Donation, error)
}

// Settlement applies state changes to a donation inside the caller's transaction.
type Settlement interface {
	SettleOrder(ctx context.Context, orderID string, paymentID string, signature *string) (data.Donation, bool, error)
	FailOrder(ctx context.Context, orderID string) (data.Donation, bool, error)
	PublishCompleted(ctx context.Context, donation data.Donation)
	PublishFailed(ctx context.Context, donation data.Donation)
}

type PaymentGateway interface {
	GetOrderPayments(ctx context.Context, orderID string) ([]gatewayprotocol.Payment, error)
}

type Config struct {
	TickPeriod        time.Duration
	WorkersCount      int
	TasksBufferLength int
	// MinPendingAge keeps the monitor away from orders the donor may still be paying.
	MinPendingAge time.Duration
	// PendingTTL is how long an order may stay unpaid before it is failed.
	PendingTTL time.Duration
	// GatewayTimeout bounds one order check.
	GatewayTimeout time.Duration
}

type outcome int

const (
	leftPending outcome = iota
	settled
	failed
)

// OrdersMonitor reconciles pending donations with the payment gateway. A
// captured payment settles the donation; an order unpaid for longer than
// PendingTTL fails it.
type OrdersMonitor struct {
	donationsRepository DonationsRepository
	settlement          Settlement
	transactionManager  TransactionManager
	gateway             PaymentGateway
	processingOrders    *threadsafe.HashSet[string]
	config              Config
	logger              *logging.ZapLogger
	now                 func() time.Time
	done                chan struct{}
	stopped             chan struct{}
	stopOnce            sync.Once
	mu                  sync.Mutex
	running             bool
}

func NewOrdersMonitor(
	config Config,
	donationsRepository DonationsRepository,
	settlement Settlement,
	transactionManager TransactionManager,
	gateway PaymentGateway,
	logger *logging.ZapLogger,
) *OrdersMonitor {
	if config.WorkersCount <= 0 {
		config.WorkersCount = 1
	}
	if config.TasksBufferLength <= 0 {
		config.TasksBufferLength = config.WorkersCount * 4
	}
	return &OrdersMonitor{
		donationsRepository: donationsRepository,
		settlement:          settlement,
		transactionManager:  transactionManager,
		gateway:             gateway,
		config:              config,
		processingOrders:    threadsafe.NewHashSet[string](),
		logger:              logger,
		now:                 time.Now,
		done:                make(chan struct{}),
		stopped:             make(chan struct{}),
	}
}

// Run blocks until Stop is called and every worker has finished. It returns
// at once when Stop was called before it.
func (om *OrdersMonitor) Run() {
	om.mu.Lock()
	select {
	case <-om.done:
		om.mu.Unlock()
		return
	default:
	}
	om.running = true
	om.mu.Unlock()
	defer close(om.stopped)

	orderIDsChan := make(chan string, om.config.TasksBufferLength)

	wg := &sync.WaitGroup{}

	for i := 0; i < om.config.WorkersCount; i++ {
		wg.Add(1)
		go func(orderIDsChan <-chan string) {
			defer wg.Done()
			om.worker(orderIDsChan)
		}(orderIDsChan)
	}

	wg.Add(1)
	go func(orderIDsChan chan<- string) {
		defer wg.Done()
		om.scheduler(orderIDsChan)
	}(orderIDsChan)

	wg.Wait()
}

// Stop signals Run to finish and waits until no worker is checking an order,
// so nothing is settled or published after it returns.
func (om *OrdersMonitor) Stop() {
	om.stopOnce.Do(func() {
		close(om.done)
	})
	om.mu.Lock()
	running := om.running
	om.mu.Unlock()
	if running {
		<-om.stopped
	}
}

func (om *OrdersMonitor) scheduler(orderIDsChan chan<- string) {
	defer close(orderIDsChan)

	ticker := time.NewTicker(om.config.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-om.done:
			return
		case <-ticker.C:
			if err := om.tick(orderIDsChan); err != nil {
				om.logger.ErrorCtx(context.Background(), "error while scheduling orders", zap.Error(err))
			}
		}
	}
}

func (om *OrdersMonitor) tick(orderIDsChan chan<- string) error {
	start := time.Now()
	defer func() {
		metrics.MonitorTickDuration.Observe(time.Since(start).Seconds())
	}()

	maxTasksToSchedule := om.config.TasksBufferLength - len(orderIDsChan)
	if maxTasksToSchedule <= 0 {
		return nil
	}
	donations, err := om.donationsRepository.GetPendingDonations(
		context.Background(),
		om.now().Add(-om.config.MinPendingAge),
		maxTasksToSchedule,
	)
	if err != nil {
		return fmt.Errorf("failed to get pending donations: %w", err)
	}
	for _, donation := range donations {
		orderID := donation.RazorpayOrderID
		if om.processingOrders.Contains(orderID) {
			continue
		}
		om.logger.DebugCtx(context.Background(), "scheduling order", zap.String("orderID", orderID))
		om.processingOrders.Add(orderID)
		select {
		case orderIDsChan <- orderID:
		default:
			om.processingOrders.Remove(orderID)
			return nil
		}
	}
	return nil
}

func (om *OrdersMonitor) worker(orderIDsChan <-chan string) {
	for orderID := range orderIDsChan {
		ctx := logging.WithContextFields(context.Background(), zap.String("orderID", orderID))
		err := om.checkOrder(ctx, orderID)
		om.processingOrders.Remove(orderID)
		if err != nil {
			om.logger.ErrorCtx(ctx, "failed to check order", zap.Error(err))
		}
	}
}

// checkOrder settles or fails one pending donation. The gateway is asked
// before the donation row is locked, and the status is checked again under
// the lock. Events are published only after the transaction committed.
func (om *OrdersMonitor) checkOrder(ctx context.Context, orderID string) error {
	if om.config.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, om.config.GatewayTimeout)
		defer cancel()
	}

	payments, err := om.gateway.GetOrderPayments(ctx, orderID)
	if err != nil && !errors.Is(err, paymentgateway.ErrOrderNotFound) {
		return fmt.Errorf("failed to get order payments: %w", err)
	}
	payment, captured := capturedPayment(payments)

	var result outcome
	var donation data.Donation
	err = om.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		result = leftPending
		current, err := om.donationsRepository.GetDonationByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to get donation: %w", err)
		}
		if current.Status != data.PendingStatus {
			return nil
		}

		if captured {
			donation, _, err = om.settlement.SettleOrder(ctx, orderID, payment.ID, nil)
			if err != nil {
				return err
			}
			result = settled
			return nil
		}

		if om.now().Sub(current.CreatedAt) < om.config.PendingTTL {
			return nil
		}
		donation, _, err = om.settlement.FailOrder(ctx, orderID)
		if err != nil {
			return err
		}
		result = failed
		return nil
	})
	if err != nil {
		return err
	}

	switch result {
	case settled:
		metrics.DonationsSettled.WithLabelValues(metrics.SourceMonitor).Inc()
		om.logger.InfoCtx(ctx, "pending donation settled from captured payment", zap.String("donationID", donation.ID))
		om.settlement.PublishCompleted(ctx, donation)
	case failed:
		metrics.DonationsFailed.Inc()
		om.logger.InfoCtx(ctx, "pending donation expired", zap.String("donationID", donation.ID))
		om.settlement.PublishFailed(ctx, donation)
	case leftPending:
	}
	return nil
}

func capturedPayment(payments []gatewayprotocol.Payment) (gatewayprotocol.Payment, bool) {
	for _, payment := range payments {
		if payment.Status == gatewayprotocol.Captured {
			return payment, true
		}
	}
	return gatewayprotocol.Payment{}, false
}
