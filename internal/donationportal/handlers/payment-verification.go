package handlers

import (
	"context"
	"net/http"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/internal/donationportal/data"
	"animal-donations/pkg/logging"
)

const paymentVerifiedMessage = "Payment verified successfully"

type PaymentVerificationService interface {
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (data.Donation, error)
}

type PaymentVerificationHandler struct {
	service PaymentVerificationService
	logger  *logging.ZapLogger
}

func NewPaymentVerificationHandler(service PaymentVerificationService, logger *logging.ZapLogger) *PaymentVerificationHandler {
	return &PaymentVerificationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *PaymentVerificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	request, err := decodeJSON[clientprotocol.VerifyPaymentRequest](r.Body)
	if err != nil {
		writeInvalidBody(r.Context(), w, err, h.logger)
		return
	}

	donation, err := h.service.VerifyPayment(
		r.Context(),
		request.RazorpayOrderID,
		request.RazorpayPaymentID,
		request.RazorpaySignature,
	)
	if err != nil {
		writeServiceError(r.Context(), w, err, errorMessages{
			notFound: "Donation not found",
			failure:  "Failed to verify payment",
		}, h.logger)
		return
	}

	writeResponseJSON(r.Context(), w, http.StatusOK, clientprotocol.Response{
		Success: true,
		Message: paymentVerifiedMessage,
		Data:    toClientDonation(donation),
	}, h.logger)
}
