package rest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/pkg/api"
)

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// Subscribe открывает WebSocket-подписку на ресурс в пределах scope.
// Соединение переподключается с экспоненциальной паузой до вызова
// Unsubscribe; смены состояния уходят в OnConnectionChange-обработчики.
func (c *Client) Subscribe(ctx context.Context, resource, scope string, onEvent backend.EventHandler) (backend.Subscription, error) {
	wsURL, err := c.subscribeURL(resource, scope)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &wsSubscription{cancel: cancel}

	go c.runSubscription(subCtx, wsURL, resource, onEvent)

	return sub, nil
}

// subscribeURL строит ws(s)://.../api/v1/subscribe из baseURL
func (c *Client) subscribeURL(resource, scope string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("bad base url %q: %w", c.baseURL, err)
	}

	switch base.Scheme {
	case "http":
		base.Scheme = "ws"
	case "https":
		base.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", base.Scheme)
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + apiPrefix + "/subscribe"
	q := base.Query()
	q.Set("resource", resource)
	q.Set("scope", scope)
	if c.token != "" {
		q.Set("token", c.token)
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// runSubscription держит соединение живым до отмены subCtx
func (c *Client) runSubscription(ctx context.Context, wsURL, resource string, onEvent backend.EventHandler) {
	backoff := reconnectBase

	for {
		if ctx.Err() != nil {
			c.setConnStatus(api.ConnectionStatus{State: api.ConnDisconnected})
			return
		}

		c.setConnStatus(api.ConnectionStatus{State: api.ConnConnecting})

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				c.setConnStatus(api.ConnectionStatus{State: api.ConnDisconnected})
				return
			}
			c.logger.Warn("Subscription dial failed, will retry",
				"resource", resource, "backoff", backoff, "error", err)
			c.setConnStatus(api.ConnectionStatus{State: api.ConnError, LastError: err.Error()})

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				c.setConnStatus(api.ConnectionStatus{State: api.ConnDisconnected})
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		c.logger.Debug("Subscription connected", "resource", resource)
		c.setConnStatus(api.ConnectionStatus{State: api.ConnConnected})
		backoff = reconnectBase

		c.readLoop(ctx, conn, resource, onEvent)

		_ = conn.Close() //nolint:errcheck // соединение уже мертво
		if ctx.Err() != nil {
			c.setConnStatus(api.ConnectionStatus{State: api.ConnDisconnected})
			return
		}
		c.setConnStatus(api.ConnectionStatus{State: api.ConnDisconnected, LastError: "connection lost"})
	}
}

// readLoop читает кадры до ошибки соединения или отмены
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, resource string, onEvent backend.EventHandler) {
	// закрываем соединение при отмене, чтобы разбудить ReadJSON
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close() //nolint:errcheck // принудительное закрытие при отписке
		case <-done:
		}
	}()

	for {
		var event api.SubscriptionEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				c.logger.Debug("Subscription read failed", "resource", resource, "error", err)
			}
			return
		}
		onEvent(event)
	}
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > reconnectMax {
		return reconnectMax
	}
	return next
}

// wsSubscription — идемпотентный handle подписки
type wsSubscription struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (s *wsSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}
