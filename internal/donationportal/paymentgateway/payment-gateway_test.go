package paymentgateway

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animal-donations/internal/common/gatewayprotocol"
	"animal-donations/pkg/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:   srv.URL,
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
	}, logging.NewNop())
}

func TestCreateOrder(t *testing.T) {
	var received gatewayprotocol.OrderRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gatewayprotocol.Order{
			ID:       "order_abc",
			Entity:   "order",
			Amount:   received.Amount,
			Currency: received.Currency,
			Receipt:  received.Receipt,
			Status:   "created",
		})
	})

	order, err := client.CreateOrder(context.Background(), decimal.NewFromInt(500), "donation_1700000000000")
	require.NoError(t, err)

	assert.Equal(t, int64(50000), received.Amount)
	assert.Equal(t, "INR", received.Currency)
	assert.Equal(t, "donation_1700000000000", received.Receipt)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(50000), order.Amount)
}

func TestCreateOrderRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	})

	_, err := client.CreateOrder(context.Background(), decimal.NewFromInt(1), "r")
	require.ErrorIs(t, err, ErrRequestRejected)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestCreateOrderServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CreateOrder(context.Background(), decimal.NewFromInt(1), "r")
	require.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestCreateOrderNotConfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()
	client := New(Config{BaseURL: srv.URL}, logging.NewNop())

	assert.False(t, client.Configured())
	_, err := client.CreateOrder(context.Background(), decimal.NewFromInt(1), "r")
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)
}

func TestGetOrderPayments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/orders/order_abc/payments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"entity": "collection",
			"count": 2,
			"items": [
				{"id": "pay_1", "status": "failed", "order_id": "order_abc", "amount": 50000},
				{"id": "pay_2", "status": "captured", "order_id": "order_abc", "amount": 50000, "captured": true}
			]
		}`))
	})

	payments, err := client.GetOrderPayments(context.Background(), "order_abc")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, gatewayprotocol.Failed, payments[0].Status)
	assert.Equal(t, gatewayprotocol.Captured, payments[1].Status)
	assert.True(t, payments[1].Captured)
}

func TestGetOrderPaymentsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetOrderPayments(context.Background(), "order_missing")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole", amount: "500", want: 50000},
		{name: "two decimals", amount: "10.25", want: 1025},
		{name: "one decimal", amount: "0.5", want: 50},
		{name: "three decimals", amount: "1.005", wantErr: true},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-1", wantErr: true},
		{name: "largest int64", amount: "92233720368547758.07", want: math.MaxInt64},
		{name: "int64 overflow", amount: "100000000000000000", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
