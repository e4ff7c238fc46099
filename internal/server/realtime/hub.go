// Package realtime рассылает события изменений ресурсов по WebSocket.
// Каждый подписчик привязан к паре (resource, scope); события тенанта
// доставляются его подписчикам, глобальные ('' tenant) — всем.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/iudanet/callboard/pkg/api"
)

// sendBuffer — очередь событий на подписчика; переполнение означает
// безнадежно отставшего клиента, его соединение закрывается
const sendBuffer = 32

// Hub управляет подписчиками и рассылкой событий
type Hub struct {
	logger   *slog.Logger
	subs     map[*subscriber]struct{}
	upgrader websocket.Upgrader
	seq      uint64
	mu       sync.Mutex
	closed   bool
}

type subscriber struct {
	conn     *websocket.Conn
	send     chan api.SubscriptionEvent
	resource string
	scope    string
}

// NewHub создает hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// dev-сервер: дашборд ходит с любого origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve апгрейдит запрос до WebSocket и держит подписку до закрытия
// соединения клиентом. snapshot, если не nil, уходит первым кадром.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, resource, scope string, snapshot []api.SystemMessage) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		conn:     conn,
		send:     make(chan api.SubscriptionEvent, sendBuffer),
		resource: resource,
		scope:    scope,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	// Снапшот кладем в очередь до регистрации: буфер пуст, не заблокирует
	if snapshot != nil {
		sub.send <- api.SubscriptionEvent{
			Type:     api.EventSnapshot,
			Resource: resource,
			Scope:    scope,
			Snapshot: snapshot,
			Seq:      h.nextSeqLocked(),
		}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("Subscriber connected", "resource", resource, "scope", scope)

	go sub.writePump(h.logger)

	// Читаем до ошибки: так узнаем о закрытии со стороны клиента
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(sub)
	h.logger.Debug("Subscriber disconnected", "resource", resource, "scope", scope)
	return nil
}

// Broadcast доставляет событие подписчикам ресурса.
// tenantID — tenant строки события; '' означает глобальную запись.
func (h *Hub) Broadcast(resource, tenantID string, event api.SubscriptionEvent) {
	h.mu.Lock()
	event.Resource = resource
	event.Seq = h.nextSeqLocked()

	var overflow []*subscriber
	for sub := range h.subs {
		if sub.resource != resource {
			continue
		}
		if !scopeMatches(sub.scope, tenantID) {
			continue
		}

		ev := event
		ev.Scope = sub.scope
		select {
		case sub.send <- ev:
		default:
			overflow = append(overflow, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range overflow {
		h.logger.Warn("Subscriber too slow, dropping",
			"resource", sub.resource, "scope", sub.scope)
		h.drop(sub)
	}
}

// Close закрывает все подписки
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		close(sub.send)
		_ = sub.conn.Close()
	}
}

// SubscriberCount возвращает число активных подписчиков
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
	}
	h.mu.Unlock()

	if ok {
		close(sub.send)
		_ = sub.conn.Close()
	}
}

// nextSeqLocked выдает следующий номер события; вызывается под mu
func (h *Hub) nextSeqLocked() uint64 {
	h.seq++
	return h.seq
}

// scopeMatches решает, видит ли подписчик scope событие тенанта tenant:
// глобальный подписчик видит все, глобальные события видят все
func scopeMatches(scope, tenant string) bool {
	return scope == "" || tenant == "" || scope == tenant
}

func (s *subscriber) writePump(logger *slog.Logger) {
	for event := range s.send {
		if err := s.conn.WriteJSON(event); err != nil {
			logger.Debug("Failed to write event", "error", err)
			_ = s.conn.Close()
			return
		}
	}
}
