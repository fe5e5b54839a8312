package paymentgateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"animal-donations/internal/common/gatewayprotocol"
	"animal-donations/pkg/logging"
)

const (
	Currency       = "INR"
	DefaultBaseURL = "https://api.razorpay.com"

	ordersPath        = "/v1/orders"
	orderPaymentsPath = "/v1/orders/{orderID}/payments"
)

var (
	ErrNotConfigured      = errors.New("payment gateway credentials are not configured")
	ErrOrderNotFound      = errors.New("gateway order not found")
	ErrRequestRejected    = errors.New("gateway rejected the request")
	ErrUnexpectedResponse = errors.New("unexpected gateway response")
	ErrInvalidAmount      = errors.New("amount cannot be expressed in minor units")
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Client talks to the Razorpay Orders API. One instance is shared by the
// whole process.
type Client struct {
	client *resty.Client
	cfg    Config
	logger *logging.ZapLogger
}

func New(cfg Config, logger *logging.ZapLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Client{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) Configured() bool {
	return c.cfg.KeyID != "" && c.cfg.KeySecret != ""
}

// KeyID is the public key handed to the checkout widget.
func (c *Client) KeyID() string {
	return c.cfg.KeyID
}

// CreateOrder registers an order for amount (whole currency units). The
// amount is sent in minor units.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (gatewayprotocol.Order, error) {
	if !c.Configured() {
		return gatewayprotocol.Order{}, ErrNotConfigured
	}
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return gatewayprotocol.Order{}, err
	}

	var order gatewayprotocol.Order
	var apiErr gatewayprotocol.ErrorResponse
	resp, err := c.client.
		R().
		SetContext(ctx).
		SetBody(gatewayprotocol.OrderRequest{
			Amount:   minor,
			Currency: Currency,
			Receipt:  receipt,
		}).
		SetResult(&order).
		SetError(&apiErr).
		Post(ordersPath)
	if err != nil {
		return gatewayprotocol.Order{}, fmt.Errorf("create order request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		if order.ID == "" {
			return gatewayprotocol.Order{}, fmt.Errorf("%w: order id is missing", ErrUnexpectedResponse)
		}
		c.logger.DebugCtx(ctx, "gateway order created",
			zap.String("orderID", order.ID),
			zap.Int64("amount", order.Amount),
		)
		return order, nil
	case http.StatusBadRequest, http.StatusUnauthorized:
		return gatewayprotocol.Order{}, fmt.Errorf("%w: %s", ErrRequestRejected, describe(apiErr))
	default:
		return gatewayprotocol.Order{}, fmt.Errorf("%w: status code %v", ErrUnexpectedResponse, resp.StatusCode())
	}
}

// GetOrderPayments lists every payment attempt made against the order.
func (c *Client) GetOrderPayments(ctx context.Context, orderID string) ([]gatewayprotocol.Payment, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var collection gatewayprotocol.PaymentCollection
	var apiErr gatewayprotocol.ErrorResponse
	resp, err := c.client.
		R().
		SetContext(ctx).
		SetPathParam("orderID", orderID).
		SetResult(&collection).
		SetError(&apiErr).
		Get(orderPaymentsPath)
	if err != nil {
		return nil, fmt.Errorf("get order payments request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return collection.Items, nil
	case http.StatusNotFound:
		return nil, ErrOrderNotFound
	case http.StatusBadRequest, http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrRequestRejected, describe(apiErr))
	default:
		return nil, fmt.Errorf("%w: status code %v", ErrUnexpectedResponse, resp.StatusCode())
	}
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ToMinorUnits converts whole units to paise. Fractions of a paisa are rejected.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Shift(2)
	if !minor.IsInteger() || !minor.IsPositive() || minor.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return minor.IntPart(), nil
}

func describe(apiErr gatewayprotocol.ErrorResponse) string {
	if apiErr.Error.Description == "" {
		return "no description"
	}
	if apiErr.Error.Code == "" {
		return apiErr.Error.Description
	}
	return apiErr.Error.Code + ": " + apiErr.Error.Description
}
