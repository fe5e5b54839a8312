package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/internal/donationportal/data"
	"animal-donations/internal/donationportal/service"
	"animal-donations/pkg/logging"
)

type AnimalCreationService interface {
	CreateAnimal(ctx context.Context, in service.NewAnimal) (data.Animal, error)
}

type AnimalCreationHandler struct {
	service AnimalCreationService
	logger  *logging.ZapLogger
}

func NewAnimalCreationHandler(service AnimalCreationService, logger *logging.ZapLogger) *AnimalCreationHandler {
	return &AnimalCreationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnimalCreationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	request, err := decodeJSON[clientprotocol.CreateAnimalRequest](r.Body)
	if err != nil {
		writeInvalidBody(r.Context(), w, err, h.logger)
		return
	}

	animal, err := h.service.CreateAnimal(r.Context(), service.NewAnimal{
		Name:         request.Name,
		Description:  request.Description,
		Image:        request.Image,
		MedicalNeeds: request.MedicalNeeds,
		UrgencyLevel: request.UrgencyLevel,
		TargetAmount: amountPtr(request.TargetAmount),
		RaisedAmount: amountPtr(request.RaisedAmount),
	})
	if err != nil {
		writeServiceError(r.Context(), w, err, errorMessages{failure: "Failed to create animal"}, h.logger)
		return
	}
	h.logger.InfoCtx(r.Context(), "animal created")
	writeData(r.Context(), w, http.StatusCreated, toClientAnimal(animal), h.logger)
}

func amountPtr(a *clientprotocol.Amount) *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}
