package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/internal/donationportal/data"
	"animal-donations/pkg/logging"
)

const donationsAnimalIDParam = "animalID"

type DonationsGettingService interface {
	ListCompletedDonations(ctx context.Context, animalID string) ([]data.Donation, error)
}

type DonationsGettingHandler struct {
	service DonationsGettingService
	logger  *logging.ZapLogger
}

func NewDonationsGettingHandler(service DonationsGettingService, logger *logging.ZapLogger) *DonationsGettingHandler {
	return &DonationsGettingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *DonationsGettingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListCompletedDonations(r.Context(), chi.URLParam(r, donationsAnimalIDParam))
	if err != nil {
		writeServiceError(r.Context(), w, err, errorMessages{failure: "Failed to fetch donations"}, h.logger)
		return
	}
	res := make([]clientprotocol.Donation, len(donations))
	for i, donation := range donations {
		res[i] = toClientDonation(donation)
	}
	writeData(r.Context(), w, http.StatusOK, res, h.logger)
}
