package paymentsig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	fixtureSecret    = "testsecret"
	fixtureOrderID   = "order_abc"
	fixturePaymentID = "pay_xyz"
	fixtureSignature = "3dd5062c53f808ef094a994bb1e6be30c96d9d105a92a3e9d2bf1e23d040971a"
)

func TestSign(t *testing.T) {
	assert.Equal(t, fixtureSignature, Sign(fixtureSecret, fixtureOrderID, fixturePaymentID))
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
		signature string
		expected  bool
	}{
		{
			name:      "fixture",
			secret:    fixtureSecret,
			orderID:   fixtureOrderID,
			paymentID: fixturePaymentID,
			signature: fixtureSignature,
			expected:  true,
		},
		{
			name:      "other payment id",
			secret:    fixtureSecret,
			orderID:   fixtureOrderID,
			paymentID: "pay_xyy",
			signature: fixtureSignature,
			expected:  false,
		},
		{
			name:      "other secret",
			secret:    "othersecret",
			orderID:   fixtureOrderID,
			paymentID: fixturePaymentID,
			signature: fixtureSignature,
			expected:  false,
		},
		{
			name:      "uppercase hex",
			secret:    fixtureSecret,
			orderID:   fixtureOrderID,
			paymentID: fixturePaymentID,
			signature: strings.ToUpper(fixtureSignature),
			expected:  false,
		},
		{
			name:      "empty signature",
			secret:    fixtureSecret,
			orderID:   fixtureOrderID,
			paymentID: fixturePaymentID,
			signature: "",
			expected:  false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Verify(test.secret, test.orderID, test.paymentID, test.signature))
		})
	}
}

func TestVerifyRejectsEverySingleCharacterTamper(t *testing.T) {
	for i := 0; i < len(fixtureSignature); i++ {
		tampered := []byte(fixtureSignature)
		if tampered[i] == '0' {
			tampered[i] = '1'
		} else {
			tampered[i] = '0'
		}
		assert.False(t, Verify(fixtureSecret, fixtureOrderID, fixturePaymentID, string(tampered)), "position %d", i)
	}
}
