package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/callboard/internal/server/realtime"
	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/internal/validation"
	"github.com/iudanet/callboard/pkg/api"
)

// snapshotLimit ограничивает размер начального снапшота подписки
const snapshotLimit = 500

// SubscribeHandler открывает WebSocket-подписки на ресурсы
type SubscribeHandler struct {
	logger *slog.Logger
	store  storage.DataStore
	hub    *realtime.Hub
}

// NewSubscribeHandler создает handler подписок
func NewSubscribeHandler(logger *slog.Logger, store storage.DataStore, hub *realtime.Hub) *SubscribeHandler {
	return &SubscribeHandler{
		logger: logger,
		store:  store,
		hub:    hub,
	}
}

// Subscribe обрабатывает GET /api/v1/subscribe?resource=...&scope=...
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resource := r.URL.Query().Get("resource")
	if err := validation.ValidateResource(resource); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}
	scope := r.URL.Query().Get("scope")

	tokenScope, ok := GetTenantScope(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}
	if tokenScope != "" && scope != tokenScope {
		sendError(w, h.logger, "forbidden scope", http.StatusForbidden)
		return
	}

	// Системные сообщения получают начальный снапшот первым кадром
	var snapshot []api.SystemMessage
	if resource == "system_messages" {
		q := storage.Query{
			OrderBy:    "created_at",
			Descending: true,
			Limit:      snapshotLimit,
		}
		// глобальный подписчик видит сообщения всех тенантов,
		// как и в рассылке hub
		if scope != "" {
			q.Scope = &scope
		}
		result, err := h.store.QueryRows(ctx, resource, q)
		if err != nil {
			h.logger.ErrorContext(ctx, "snapshot query failed", slog.Any("error", err))
			sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
			return
		}

		now := time.Now().UTC()
		snapshot = make([]api.SystemMessage, 0, len(result.Rows))
		for _, row := range result.Rows {
			msg := messageFromRow(row)
			if msg.ExpiresAt != nil && !msg.ExpiresAt.After(now) {
				continue
			}
			snapshot = append(snapshot, msg)
		}
	}

	if err := h.hub.Serve(w, r, resource, scope, snapshot); err != nil {
		// Upgrade не удался; ответ уже написан пакетом websocket
		h.logger.WarnContext(ctx, "websocket upgrade failed", slog.Any("error", err))
	}
}

// messageFromRow собирает wire-представление сообщения из строки ресурса
func messageFromRow(row api.Row) api.SystemMessage {
	msg := api.SystemMessage{
		ID:       row.ID(),
		TenantID: row.TenantID(),
	}
	if severity, ok := row["severity"].(string); ok {
		msg.Severity = severity
	}
	if text, ok := row["text"].(string); ok {
		msg.Text = text
	}
	if raw, ok := row["created_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			msg.CreatedAt = ts
		}
	}
	if raw, ok := row["expires_at"].(string); ok && raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			msg.ExpiresAt = &ts
		}
	}
	return msg
}
