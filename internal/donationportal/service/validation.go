package service

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const maxAmountPlaces = 2

// maxAmount is the largest value a NUMERIC(12, 2) column holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

// validEmail accepts a bare addr-spec with a dotted domain, e.g. a@x.com.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func validImageURL(image string) bool {
	u, err := url.ParseRequestURI(image)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validMoneyPlaces(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(maxAmountPlaces))
}

func withinMaxAmount(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(maxAmount)
}
