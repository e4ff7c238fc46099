package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/internal/server/storage"
	"github.com/iudanet/callboard/internal/validation"
	"github.com/iudanet/callboard/pkg/api"
)

// maxRange ограничивает размер одной страницы
const maxRange = 500

// ResourceHandler обрабатывает CRUD запросы к ресурсам дашборда
type ResourceHandler struct {
	logger *slog.Logger
	store  storage.DataStore
	hub    Broadcaster
}

// NewResourceHandler создает handler ресурсов
func NewResourceHandler(logger *slog.Logger, store storage.DataStore, hub Broadcaster) *ResourceHandler {
	return &ResourceHandler{
		logger: logger,
		store:  store,
		hub:    hub,
	}
}

// List обрабатывает GET /api/v1/{resource}
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resource := r.PathValue("resource")
	if err := validation.ValidateResource(resource); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	tokenScope, ok := GetTenantScope(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	q, err := parseQuery(r, tokenScope)
	if err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}
	if q == nil {
		// scope запроса вне прав токена
		sendError(w, h.logger, "forbidden scope", http.StatusForbidden)
		return
	}

	result, err := h.store.QueryRows(ctx, resource, *q)
	if err != nil {
		status := storageStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "query failed",
				slog.String("resource", resource), slog.Any("error", err))
			sendError(w, h.logger, "internal server error", status)
			return
		}
		sendError(w, h.logger, err.Error(), status)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(result.TotalCount))
	sendJSON(w, h.logger, api.QueryResponse{
		Rows:       result.Rows,
		TotalCount: result.TotalCount,
	}, http.StatusOK)
}

// Create обрабатывает POST /api/v1/{resource}
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resource := r.PathValue("resource")
	if err := validation.ValidateResource(resource); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	tokenScope, ok := GetTenantScope(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var row api.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	// Tenant-токен пишет только в свой tenant
	if tokenScope != "" {
		if tenant := row.TenantID(); tenant != "" && tenant != tokenScope {
			sendError(w, h.logger, "forbidden scope", http.StatusForbidden)
			return
		}
		row["tenant_id"] = tokenScope
	}

	if resource == "system_messages" {
		if reason, ok := validateMessageRow(row); !ok {
			sendError(w, h.logger, reason, http.StatusUnprocessableEntity)
			return
		}
	}

	created, err := h.store.InsertRow(ctx, resource, row)
	if err != nil {
		status := storageStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "insert failed",
				slog.String("resource", resource), slog.Any("error", err))
			sendError(w, h.logger, "internal server error", status)
			return
		}
		sendError(w, h.logger, err.Error(), status)
		return
	}

	h.hub.Broadcast(resource, created.TenantID(), changeEvent(api.EventInsert, resource, created))

	h.logger.InfoContext(ctx, "row created",
		slog.String("resource", resource), slog.String("id", created.ID()))

	sendJSON(w, h.logger, api.MutationResponse{Row: created}, http.StatusCreated)
}

// Update обрабатывает PATCH /api/v1/{resource}/{id}
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resource := r.PathValue("resource")
	id := r.PathValue("id")
	if err := validation.ValidateResource(resource); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	existing := h.authorizeRow(w, r, resource, id)
	if existing == nil {
		return
	}

	var patch api.Row
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	delete(patch, "id")
	delete(patch, "tenant_id") // tenant строки неизменяем

	if resource == "system_messages" {
		if sev, ok := patch["severity"].(string); ok && !models.ValidSeverity(sev) {
			sendError(w, h.logger, fmt.Sprintf("unknown severity %q", sev), http.StatusUnprocessableEntity)
			return
		}
	}

	updated, err := h.store.UpdateRow(ctx, resource, id, patch)
	if err != nil {
		sendError(w, h.logger, err.Error(), storageStatus(err))
		return
	}

	h.hub.Broadcast(resource, updated.TenantID(), changeEvent(api.EventUpdate, resource, updated))

	sendJSON(w, h.logger, api.MutationResponse{Row: updated}, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/{resource}/{id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resource := r.PathValue("resource")
	id := r.PathValue("id")
	if err := validation.ValidateResource(resource); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	existing := h.authorizeRow(w, r, resource, id)
	if existing == nil {
		return
	}

	if err := h.store.DeleteRow(ctx, resource, id); err != nil {
		sendError(w, h.logger, err.Error(), storageStatus(err))
		return
	}

	h.hub.Broadcast(resource, existing.TenantID(), api.SubscriptionEvent{
		Type:  api.EventDelete,
		RowID: id,
	})

	h.logger.InfoContext(ctx, "row deleted",
		slog.String("resource", resource), slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
}

// authorizeRow загружает строку и проверяет права токена на нее.
// При отказе сам пишет ответ и возвращает nil.
func (h *ResourceHandler) authorizeRow(w http.ResponseWriter, r *http.Request, resource, id string) api.Row {
	ctx := r.Context()

	tokenScope, ok := GetTenantScope(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return nil
	}

	result, err := h.store.QueryRows(ctx, resource, storage.Query{
		Filters: map[string]string{"id": id},
		Limit:   1,
	})
	if err != nil {
		sendError(w, h.logger, err.Error(), storageStatus(err))
		return nil
	}
	if len(result.Rows) == 0 {
		sendError(w, h.logger, "row not found", http.StatusNotFound)
		return nil
	}

	row := result.Rows[0]
	if tokenScope != "" && row.TenantID() != tokenScope {
		// Чужие и глобальные строки для tenant-токена неприкосновенны
		sendError(w, h.logger, "forbidden scope", http.StatusForbidden)
		return nil
	}

	return row
}

// parseQuery разбирает query string в storage.Query и применяет tenant
// scope токена. nil без ошибки означает запрос вне прав токена.
func parseQuery(r *http.Request, tokenScope string) (*storage.Query, error) {
	q := storage.Query{
		Filters: make(map[string]string),
		Limit:   100,
	}

	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]

		switch key {
		case "token":
			// токен аутентификации, не фильтр
		case "order":
			col, desc := parseOrder(value)
			q.OrderBy = col
			q.Descending = desc
		case "range":
			start, end, err := parseRange(value)
			if err != nil {
				return nil, err
			}
			q.Offset = start
			q.Limit = end - start
		case "scope":
			// выборка сообщений: tenant_id IN ('', scope).
			// Пустой scope — глобальная выборка без фильтра по tenant
			if value == "" {
				continue
			}
			if tokenScope != "" && value != tokenScope {
				return nil, nil
			}
			scope := value
			q.Scope = &scope
		default:
			if err := validation.ValidateFilters(map[string]string{key: value}); err != nil {
				return nil, err
			}
			q.Filters[key] = value
		}
	}

	// Tenant-токен видит только свой tenant
	if tokenScope != "" && q.Scope == nil {
		if requested, ok := q.Filters["tenant_id"]; ok && requested != tokenScope {
			return nil, nil
		}
		q.Filters["tenant_id"] = tokenScope
	}

	return &q, nil
}

func parseOrder(raw string) (string, bool) {
	if col, ok := strings.CutSuffix(raw, ".desc"); ok {
		return col, true
	}
	return strings.TrimSuffix(raw, ".asc"), false
}

func parseRange(raw string) (int, int, error) {
	startRaw, endRaw, ok := strings.Cut(raw, "-")
	if !ok {
		return 0, 0, fmt.Errorf("range must be start-end, got %q", raw)
	}
	start, err := strconv.Atoi(startRaw)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("bad range start %q", startRaw)
	}
	end, err := strconv.Atoi(endRaw)
	if err != nil || end <= start {
		return 0, 0, fmt.Errorf("bad range end %q", endRaw)
	}
	if end-start > maxRange {
		end = start + maxRange
	}
	return start, end, nil
}

// changeEvent собирает кадр изменения для рассылки подписчикам.
// RowID служит сигналом инвалидации для любого ресурса; полная запись
// прикладывается только для системных сообщений — остальные ресурсы
// клиент перечитывает запросом.
func changeEvent(eventType, resource string, row api.Row) api.SubscriptionEvent {
	event := api.SubscriptionEvent{
		Type:  eventType,
		RowID: row.ID(),
	}
	if resource == "system_messages" {
		msg := messageFromRow(row)
		event.Row = &msg
	}
	return event
}

// validateMessageRow проверяет обязательные поля системного сообщения
func validateMessageRow(row api.Row) (string, bool) {
	text, _ := row["text"].(string)
	if text == "" {
		return "text is required", false
	}
	severity, _ := row["severity"].(string)
	if severity == "" {
		row["severity"] = string(models.SeverityInfo)
		return "", true
	}
	if !models.ValidSeverity(severity) {
		return fmt.Sprintf("unknown severity %q", severity), false
	}
	return "", true
}
