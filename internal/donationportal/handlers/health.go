package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"animal-donations/internal/common/clientprotocol"
	"animal-donations/pkg/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessHandler reports whether the record store answers.
type ReadinessHandler struct {
	store  Pinger
	logger *logging.ZapLogger
}

func NewReadinessHandler(store Pinger, logger *logging.ZapLogger) *ReadinessHandler {
	return &ReadinessHandler{
		store:  store,
		logger: logger,
	}
}

func (h *ReadinessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.WarnCtx(r.Context(), "store is not ready", zap.Error(err))
		writeFailure(r.Context(), w, http.StatusServiceUnavailable, "Store unavailable", err, h.logger)
		return
	}
	writeResponseJSON(r.Context(), w, http.StatusOK, clientprotocol.Response{Success: true, Message: "ready"}, h.logger)
}

func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
}
