package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"animal-donations/pkg/logging"
)

const animalIDParam = "id"

type AnimalGettingHandler struct {
	service AnimalsService
	logger  *logging.ZapLogger
}

func NewAnimalGettingHandler(service AnimalsService, logger *logging.ZapLogger) *AnimalGettingHandler {
	return &AnimalGettingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnimalGettingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	animal, err := h.service.GetAnimal(r.Context(), chi.URLParam(r, animalIDParam))
	if err != nil {
		writeServiceError(r.Context(), w, err, errorMessages{
			notFound: "Animal not found",
			failure:  "Failed to fetch animal",
		}, h.logger)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toClientAnimal(animal), h.logger)
}
