// Package handlers реализует HTTP API dev-сервера
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/pkg/api"
)

// Broadcaster рассылает события изменений подписчикам realtime-канала
type Broadcaster interface {
	Broadcast(resource, tenantID string, event api.SubscriptionEvent)
}

// sendJSON пишет JSON ответ с указанным статусом
func sendJSON(w http.ResponseWriter, logger *slog.Logger, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError пишет JSON ошибку с указанным статусом
func sendError(w http.ResponseWriter, logger *slog.Logger, message string, status int) {
	sendJSON(w, logger, api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}, status)
}

// storageStatus переводит ошибку хранилища в HTTP статус
func storageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrUnknownResource), errors.Is(err, storage.ErrBadColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
