package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"animal-donations/internal/donationportal/data"
	"animal-donations/pkg/logging"
)

const (
	DonationCompletedType = "donation.completed"
	DonationFailedType    = "donation.failed"

	DefaultTopic = "donations"
)

var ErrProducerClosed = errors.New("donation events producer is closed")

// Event is the payload written to the donations topic, keyed by animal id.
type Event struct {
	Type       string    `json:"type"`
	DonationID string    `json:"donationId"`
	AnimalID   string    `json:"animalId"`
	OrderID    string    `json:"orderId"`
	PaymentID  string    `json:"paymentId,omitempty"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewSaramaConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return cfg
}

type Producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	logger        *logging.ZapLogger
	wg            sync.WaitGroup
	closeOnce     sync.Once
	now           func() time.Time

	// mu guards closed; publish holds it for reading while it sends to the
	// input channel, which AsyncClose closes.
	mu     sync.RWMutex
	closed bool
}

func NewProducer(asyncProducer sarama.AsyncProducer, topic string, logger *logging.ZapLogger) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		logger:        logger,
		now:           time.Now,
	}
}

// Start drains the delivery reports of the async producer until Close.
func (p *Producer) Start() {
	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()
}

func (p *Producer) handleSuccesses() {
	defer p.wg.Done()
	for msg := range p.asyncProducer.Successes() {
		p.logger.DebugCtx(context.Background(), "donation event delivered",
			zap.String("topic", msg.Topic),
			zap.Int32("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
	}
}

func (p *Producer) handleErrors() {
	defer p.wg.Done()
	for err := range p.asyncProducer.Errors() {
		p.logger.ErrorCtx(context.Background(), "donation event delivery failed",
			zap.String("topic", err.Msg.Topic),
			zap.Error(err.Err),
		)
	}
}

func (p *Producer) DonationCompleted(ctx context.Context, donation data.Donation) error {
	return p.publish(ctx, DonationCompletedType, donation)
}

func (p *Producer) DonationFailed(ctx context.Context, donation data.Donation) error {
	return p.publish(ctx, DonationFailedType, donation)
}

func (p *Producer) publish(ctx context.Context, eventType string, donation data.Donation) error {
	event := Event{
		Type:       eventType,
		DonationID: donation.ID,
		AnimalID:   donation.AnimalID,
		OrderID:    donation.RazorpayOrderID,
		Amount:     donation.Amount.String(),
		Status:     string(donation.Status),
		OccurredAt: p.now().UTC(),
	}
	if donation.RazorpayPaymentID != nil {
		event.PaymentID = *donation.RazorpayPaymentID
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal donation event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(donation.AnimalID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(eventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.logger.DebugCtx(ctx, "donation event queued",
			zap.String("type", eventType),
			zap.String("donationID", donation.ID),
		)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("donation event not queued: %w", ctx.Err())
	}
}

// Close flushes buffered messages and waits for the delivery reports. Events
// published afterwards fail with ErrProducerClosed.
func (p *Producer) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
	})
	return nil
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) DonationCompleted(context.Context, data.Donation) error {
	return nil
}

func (Noop) DonationFailed(context.Context, data.Donation) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
