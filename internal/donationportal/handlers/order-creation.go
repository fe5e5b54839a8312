package handlers

import (
	"context"
	"net/http"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/internal/donationportal/service"
	"animal-donations/pkg/logging"
)

type OrderCreationService interface {
	CreateOrder(ctx context.Context, in service.NewDonation) (service.Order, error)
}

type OrderCreationHandler struct {
	service OrderCreationService
	logger  *logging.ZapLogger
}

func NewOrderCreationHandler(service OrderCreationService, logger *logging.ZapLogger) *OrderCreationHandler {
	return &OrderCreationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderCreationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	request, err := decodeJSON[clientprotocol.CreateOrderRequest](r.Body)
	if err != nil {
		writeInvalidBody(r.Context(), w, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), service.NewDonation{
		AnimalID:   request.AnimalID,
		DonorName:  request.DonorName,
		DonorEmail: request.DonorEmail,
		Amount:     request.Amount.Decimal,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err, errorMessages{
			notFound: "Animal not found",
			failure:  "Failed to create donation order",
		}, h.logger)
		return
	}

	writeData(r.Context(), w, http.StatusOK, clientprotocol.CreateOrderResponse{
		OrderID:    order.OrderID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		DonationID: order.DonationID,
		GatewayKey: order.GatewayKey,
		KeyID:      order.GatewayKey,
	}, h.logger)
}
