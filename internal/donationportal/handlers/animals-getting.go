package handlers

import (
	"context"
	"net/http"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/internal/donationportal/data"
	"animal-donations/pkg/logging"
)

type AnimalsService interface {
	ListAnimals(ctx context.Context) ([]data.Animal, error)
	GetAnimal(ctx context.Context, id string) (data.Animal, error)
}

type AnimalsGettingHandler struct {
	service AnimalsService
	logger  *logging.ZapLogger
}

func NewAnimalsGettingHandler(service AnimalsService, logger *logging.ZapLogger) *AnimalsGettingHandler {
	return &AnimalsGettingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnimalsGettingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	animals, err := h.service.ListAnimals(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err, errorMessages{failure: "Failed to fetch animals"}, h.logger)
		return
	}
	res := make([]clientprotocol.Animal, len(animals))
	for i, animal := range animals {
		res[i] = toClientAnimal(animal)
	}
	writeData(r.Context(), w, http.StatusOK, res, h.logger)
}
