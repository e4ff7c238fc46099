// Package rest реализует backend.Backend поверх REST API hosted-бэкенда:
// постраничные выборки и мутации по HTTP, realtime-подписки по WebSocket.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/pkg/api"
)

const apiPrefix = "/api/v1"

// Client — HTTP/WebSocket клиент hosted-бэкенда
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	connHandlers map[int]backend.ConnectionHandler
	baseURL      string
	token        string
	connStatus   api.ConnectionStatus
	nextHandler  int
	connMu       sync.Mutex
}

var _ backend.Backend = (*Client)(nil)

// NewClient создает клиент бэкенда. token — bearer токен, полученный
// обменом service key (см. пакет session).
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		connStatus:   api.ConnectionStatus{State: api.ConnDisconnected},
		connHandlers: make(map[int]backend.ConnectionHandler),
	}
}

// Query выполняет постраничную выборку. Общее количество строк берется
// из заголовка X-Total-Count, тело дублирует его для надежности.
func (c *Client) Query(ctx context.Context, resource string, opts backend.QueryOptions) (*backend.QueryResult, error) {
	q := url.Values{}
	for k, v := range opts.Filters {
		q.Set(k, v)
	}
	if opts.OrderBy != "" {
		order := opts.OrderBy
		if opts.Descending {
			order += ".desc"
		}
		q.Set("order", order)
	}
	q.Set("range", fmt.Sprintf("%d-%d", opts.RangeStart, opts.RangeEnd))

	path := fmt.Sprintf("%s/%s?%s", apiPrefix, resource, q.Encode())

	var body api.QueryResponse
	header, err := c.doRequest(ctx, http.MethodGet, path, resource, "", nil, &body)
	if err != nil {
		return nil, err
	}

	total := body.TotalCount
	if raw := header.Get("X-Total-Count"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			total = n
		}
	}

	return &backend.QueryResult{Rows: body.Rows, TotalCount: total}, nil
}

// Insert создает запись ресурса
func (c *Client) Insert(ctx context.Context, resource string, row api.Row) (api.Row, error) {
	var resp api.MutationResponse
	path := fmt.Sprintf("%s/%s", apiPrefix, resource)
	if _, err := c.doRequest(ctx, http.MethodPost, path, resource, "", row, &resp); err != nil {
		return nil, err
	}
	return resp.Row, nil
}

// Update изменяет запись по id
func (c *Client) Update(ctx context.Context, resource, id string, patch api.Row) (api.Row, error) {
	var resp api.MutationResponse
	path := fmt.Sprintf("%s/%s/%s", apiPrefix, resource, url.PathEscape(id))
	if _, err := c.doRequest(ctx, http.MethodPatch, path, resource, id, patch, &resp); err != nil {
		return nil, err
	}
	return resp.Row, nil
}

// Delete удаляет запись по id
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	path := fmt.Sprintf("%s/%s/%s", apiPrefix, resource, url.PathEscape(id))
	_, err := c.doRequest(ctx, http.MethodDelete, path, resource, id, nil, nil)
	return err
}

// ConnectionStatus возвращает состояние realtime-соединения
func (c *Client) ConnectionStatus() api.ConnectionStatus {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connStatus
}

// OnConnectionChange регистрирует обработчик смен состояния соединения
func (c *Client) OnConnectionChange(cb backend.ConnectionHandler) backend.Subscription {
	c.connMu.Lock()
	id := c.nextHandler
	c.nextHandler++
	c.connHandlers[id] = cb
	c.connMu.Unlock()

	return &handleSub{release: func() {
		c.connMu.Lock()
		delete(c.connHandlers, id)
		c.connMu.Unlock()
	}}
}

// setConnStatus обновляет состояние и уведомляет подписчиков.
// Повторная установка того же состояния уведомлений не порождает.
func (c *Client) setConnStatus(status api.ConnectionStatus) {
	c.connMu.Lock()
	if c.connStatus.State == status.State && c.connStatus.LastError == status.LastError {
		c.connMu.Unlock()
		return
	}
	c.connStatus = status
	handlers := make([]backend.ConnectionHandler, 0, len(c.connHandlers))
	for _, h := range c.connHandlers {
		handlers = append(handlers, h)
	}
	c.connMu.Unlock()

	for _, h := range handlers {
		h(status)
	}
}

// doRequest выполняет HTTP запрос и декодирует ответ.
// Статусы ответа отображаются в типизированные ошибки backend-пакета.
func (c *Client) doRequest(
	ctx context.Context,
	method, path, resource, id string,
	body, result any,
) (http.Header, error) {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &backend.NetworkError{Op: method, Resource: resource, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &backend.NetworkError{Op: method, Resource: resource, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapStatusError(resp.StatusCode, respBody, method, resource, id)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

// mapStatusError переводит HTTP статус в типизированную ошибку:
// 404 — валидный негативный результат, 4xx — ошибка запроса,
// все остальное — транспортный отказ (учитывается breaker-ом).
func (c *Client) mapStatusError(status int, respBody []byte, method, resource, id string) error {
	var errResp api.ErrorResponse
	_ = json.Unmarshal(respBody, &errResp) //nolint:errcheck // тело ошибки может быть не JSON

	msg := errResp.Message
	if msg == "" {
		msg = string(respBody)
	}

	switch {
	case status == http.StatusNotFound:
		return &backend.NotFoundError{Resource: resource, ID: id}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return &backend.ValidationError{Field: resource, Reason: msg}
	default:
		return &backend.NetworkError{
			Op:       method,
			Resource: resource,
			Err:      fmt.Errorf("server error (%d): %s", status, msg),
		}
	}
}

// handleSub — идемпотентный handle освобождения
type handleSub struct {
	release func()
	once    sync.Once
}

func (h *handleSub) Unsubscribe() {
	h.once.Do(h.release)
}
