// Package paymentsig computes and checks the checkout signatures the payment
// gateway hands to the browser after a successful payment.
package paymentsig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns lowercase hex HMAC-SHA256(secret, orderID + "|" + paymentID).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the expected signature with the supplied one in constant time.
// The supplied value is compared as is: an uppercase hex string does not match.
func Verify(secret, orderID, paymentID, signature string) bool {
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
