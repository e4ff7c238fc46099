package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/internal/server/token"
	"github.com/iudanet/callboard/pkg/api"
)

// TokenHandler обменивает service key на access токен
type TokenHandler struct {
	logger       *slog.Logger
	tenants      storage.TenantStore
	manager      *token.Manager
	adminKeyHash string
}

// NewTokenHandler создает handler обмена токена.
// adminKeyHash — bcrypt-хеш глобального админского ключа; пустая строка
// отключает глобальный доступ.
func NewTokenHandler(logger *slog.Logger, tenants storage.TenantStore, manager *token.Manager, adminKeyHash string) *TokenHandler {
	return &TokenHandler{
		logger:       logger,
		tenants:      tenants,
		manager:      manager,
		adminKeyHash: adminKeyHash,
	}
}

// Exchange обрабатывает POST /api/v1/token
func (h *TokenHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode token request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ServiceKey == "" {
		sendError(w, h.logger, "service_key is required", http.StatusBadRequest)
		return
	}

	hash := h.adminKeyHash
	if req.TenantID != "" {
		tenant, err := h.tenants.GetTenant(ctx, req.TenantID)
		if err != nil {
			if errors.Is(err, storage.ErrTenantNotFound) {
				// Не раскрываем, существует ли tenant
				sendError(w, h.logger, "invalid service key", http.StatusUnauthorized)
				return
			}
			h.logger.ErrorContext(ctx, "failed to get tenant", slog.Any("error", err))
			sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
			return
		}
		hash = tenant.ServiceKeyHash
	}

	if hash == "" || !token.CheckServiceKey(hash, req.ServiceKey) {
		h.logger.WarnContext(ctx, "service key rejected", slog.String("tenant", req.TenantID))
		sendError(w, h.logger, "invalid service key", http.StatusUnauthorized)
		return
	}

	signed, expiresIn, err := h.manager.Issue(req.TenantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "token issued", slog.String("tenant", req.TenantID))

	sendJSON(w, h.logger, api.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, http.StatusOK)
}
