package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/internal/donationportal/data"
	"animal-donations/internal/donationportal/service"
	"animal-donations/pkg/logging"
)

const (
	invalidBodyMessage   = "Invalid request body"
	validationMessage    = "Validation failed"
	configurationMessage = "Payment service configuration error"
	unauthorizedMessage  = "Unauthorized"
	maxBodyBytes         = 1 << 20
)

// errorMessages are the messages a handler answers with for the failures
// that depend on the endpoint.
type errorMessages struct {
	notFound string
	failure  string
}

func closeBody(ctx context.Context, body io.ReadCloser, logger *logging.ZapLogger) {
	err := body.Close()
	if err != nil {
		logger.ErrorCtx(ctx, "failed to close body", zap.Error(err))
	}
}

// decodeJSON ignores unknown fields.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	err := json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(&out)
	return out, err
}

func writeResponseJSON(ctx context.Context, w http.ResponseWriter, status int, response clientprotocol.Response, logger *logging.ZapLogger) {
	res, err := json.Marshal(response)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(res); err != nil {
		logger.ErrorCtx(ctx, "failed to write response", zap.Error(err))
	}
}

func writeData(ctx context.Context, w http.ResponseWriter, status int, payload any, logger *logging.ZapLogger) {
	writeResponseJSON(ctx, w, status, clientprotocol.Response{
		Success: true,
		Data:    payload,
	}, logger)
}

func writeFailure(ctx context.Context, w http.ResponseWriter, status int, message string, cause error, logger *logging.ZapLogger) {
	response := clientprotocol.Response{
		Success: false,
		Message: message,
	}
	if cause != nil {
		response.Error = cause.Error()
	}
	writeResponseJSON(ctx, w, status, response, logger)
}

func writeInvalidBody(ctx context.Context, w http.ResponseWriter, err error, logger *logging.ZapLogger) {
	logger.DebugCtx(ctx, "input decoding error", zap.Error(err))
	writeFailure(ctx, w, http.StatusBadRequest, invalidBodyMessage, err, logger)
}

func writeServiceError(
	ctx context.Context,
	w http.ResponseWriter,
	err error,
	messages errorMessages,
	logger *logging.ZapLogger,
) {
	switch {
	case errors.Is(err, service.ErrValidation):
		logger.DebugCtx(ctx, "validation error", zap.Error(err))
		writeFailure(ctx, w, http.StatusBadRequest, validationMessage, err, logger)
	case errors.Is(err, service.ErrInvalidSignature):
		writeFailure(ctx, w, http.StatusBadRequest, service.ErrInvalidSignature.Error(), nil, logger)
	case errors.Is(err, service.ErrNotFound):
		logger.DebugCtx(ctx, "not found", zap.Error(err))
		writeFailure(ctx, w, http.StatusNotFound, messages.notFound, nil, logger)
	case errors.Is(err, service.ErrUnauthorized):
		writeFailure(ctx, w, http.StatusUnauthorized, unauthorizedMessage, nil, logger)
	case errors.Is(err, service.ErrConfiguration):
		logger.ErrorCtx(ctx, "payment gateway is not configured", zap.Error(err))
		writeFailure(ctx, w, http.StatusInternalServerError, configurationMessage, nil, logger)
	default:
		logger.ErrorCtx(ctx, messages.failure, zap.Error(err))
		writeFailure(ctx, w, http.StatusInternalServerError, messages.failure, err, logger)
	}
}

func toClientAnimal(animal data.Animal) clientprotocol.Animal {
	res := clientprotocol.Animal{
		ID:           animal.ID,
		Name:         animal.Name,
		Description:  animal.Description,
		Image:        animal.Image,
		MedicalNeeds: animal.MedicalNeeds,
		UrgencyLevel: string(animal.UrgencyLevel),
		RaisedAmount: clientprotocol.NewAmount(animal.RaisedAmount),
		CreatedAt:    animal.CreatedAt,
		UpdatedAt:    animal.UpdatedAt,
	}
	if animal.TargetAmount != nil {
		target := clientprotocol.NewAmount(*animal.TargetAmount)
		res.TargetAmount = &target
	}
	return res
}

func toClientDonation(donation data.Donation) clientprotocol.Donation {
	return clientprotocol.Donation{
		ID:                donation.ID,
		AnimalID:          donation.AnimalID,
		DonorName:         donation.DonorName,
		DonorEmail:        donation.DonorEmail,
		Amount:            clientprotocol.NewAmount(donation.Amount),
		RazorpayOrderID:   donation.RazorpayOrderID,
		RazorpayPaymentID: donation.RazorpayPaymentID,
		RazorpaySignature: donation.RazorpaySignature,
		Status:            clientprotocol.DonationStatus(donation.Status),
		CreatedAt:         donation.CreatedAt,
		UpdatedAt:         donation.UpdatedAt,
	}
}
