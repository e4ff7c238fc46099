// Package reconcile поддерживает локальный список системных сообщений
// в согласии с бэкендом: realtime-подписка + периодическая сверка.
// Снимки применяются монотонно (last-snapshot-wins): устаревшая сверка
// никогда не затирает состояние, записанное более новой.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/pkg/api"
)

// Resource — логический ресурс реконсайлера
const Resource = "system_messages"

// maxMessages ограничивает размер полной загрузки
const maxMessages = 500

// State представляет состояние подписки реконсайлера
type State string

const (
	StateIdle         State = "idle"
	StateSubscribing  State = "subscribing"
	StateSubscribed   State = "subscribed"
	StateDisconnected State = "disconnected"
	StateReconnecting State = "reconnecting"
	StateUnsubscribed State = "unsubscribed" // терминальное
)

// Callbacks — уведомления UI-слоя. Любой callback может быть nil.
type Callbacks struct {
	// OnChange вызывается, когда согласованный список изменился.
	// added — сообщения, появившиеся в новом снимке (для toast-алертов).
	OnChange func(added []models.SystemMessage)
	// OnError получает ошибки сверки; состояние при этом не очищается
	OnError func(err error)
	// OnConnection получает смены состояния realtime-соединения
	OnConnection func(status api.ConnectionStatus)
}

// Reconciler ведет список сообщений одного scope.
// Инвариант: не более одной активной подписки на scope.
type Reconciler struct {
	backend         backend.Backend
	logger          *slog.Logger
	now             func() time.Time
	callbacks       Callbacks
	stopCleanup     chan struct{}
	sub             backend.Subscription
	connSub         backend.Subscription
	messages        []models.SystemMessage
	scope           string
	state           State
	connState       string
	cleanupInterval time.Duration
	seq             uint64 // следующий номер попытки сверки
	applied         uint64 // номер последней примененной попытки
	mu              sync.Mutex
	cleanupOnce     sync.Once
}

// New создает реконсайлер для scope (tenant id или "" для глобального).
// cleanupInterval <= 0 заменяется минутой.
func New(b backend.Backend, scope string, cleanupInterval time.Duration, cb Callbacks, logger *slog.Logger) *Reconciler {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &Reconciler{
		backend:         b,
		scope:           scope,
		cleanupInterval: cleanupInterval,
		callbacks:       cb,
		logger:          logger,
		now:             time.Now,
		state:           StateIdle,
		stopCleanup:     make(chan struct{}),
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (r *Reconciler) SetNowFunc(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// State возвращает текущее состояние подписки
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Messages возвращает копию текущего согласованного списка
func (r *Reconciler) Messages() []models.SystemMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SystemMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// ActiveMessages возвращает неистекшие сообщения. Истечение проверяется
// локально по ExpiresAt, без обращения к сети.
func (r *Reconciler) ActiveMessages() []models.SystemMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	active, _ := models.SplitByExpiry(r.messages, r.now())
	return active
}

// ExpiredMessages возвращает истекшие, но еще не вычищенные сообщения
func (r *Reconciler) ExpiredMessages() []models.SystemMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, expired := models.SplitByExpiry(r.messages, r.now())
	return expired
}

// ConnectionStatus возвращает состояние realtime-соединения бэкенда
func (r *Reconciler) ConnectionStatus() api.ConnectionStatus {
	return r.backend.ConnectionStatus()
}

// Subscribe открывает подписку и выполняет начальную полную загрузку.
// Ошибка начальной загрузки отдается в OnError, подписка при этом
// остается активной: push или следующая сверка долечат состояние.
func (r *Reconciler) Subscribe(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case StateIdle:
		r.state = StateSubscribing
	case StateUnsubscribed:
		r.mu.Unlock()
		return fmt.Errorf("reconciler for scope %q is unsubscribed", r.scope)
	default:
		r.mu.Unlock()
		return fmt.Errorf("reconciler for scope %q already subscribed", r.scope)
	}
	r.mu.Unlock()

	sub, err := r.backend.Subscribe(ctx, Resource, r.scope, r.handleEvent)
	if err != nil {
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return fmt.Errorf("subscribe %s scope %q: %w", Resource, r.scope, err)
	}

	connSub := r.backend.OnConnectionChange(r.handleConnection)

	r.mu.Lock()
	r.sub = sub
	r.connSub = connSub
	r.state = StateSubscribed
	r.mu.Unlock()

	go r.cleanupLoop()

	// начальная полная загрузка замещает локальное состояние целиком
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("Initial message load failed, keeping prior state",
			"scope", r.scope, "error", err)
	}
	return nil
}

// Refresh выполняет одну принудительную сверку: полная загрузка с
// бэкенда и монотонное применение снимка. Ошибка уходит в OnError.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateUnsubscribed {
		r.mu.Unlock()
		return fmt.Errorf("reconciler for scope %q is unsubscribed", r.scope)
	}
	r.seq++
	attempt := r.seq
	r.mu.Unlock()

	res, err := r.backend.Query(ctx, Resource, backend.QueryOptions{
		Filters:    map[string]string{"scope": r.scope},
		OrderBy:    "created_at",
		Descending: true,
		RangeStart: 0,
		RangeEnd:   maxMessages,
	})
	if err != nil {
		r.reportError(fmt.Errorf("reload %s: %w", Resource, err))
		return err
	}

	msgs := make([]models.SystemMessage, 0, len(res.Rows))
	for _, row := range res.Rows {
		m, convErr := messageFromRow(row)
		if convErr != nil {
			r.logger.Warn("Skipping malformed message row", "error", convErr)
			continue
		}
		msgs = append(msgs, m)
	}

	r.applySnapshot(msgs, attempt)
	return nil
}

// Unsubscribe освобождает подписку и останавливает таймеры. Идемпотентен.
func (r *Reconciler) Unsubscribe() {
	r.mu.Lock()
	if r.state == StateUnsubscribed {
		r.mu.Unlock()
		return
	}
	r.state = StateUnsubscribed
	sub := r.sub
	connSub := r.connSub
	r.sub = nil
	r.connSub = nil
	r.mu.Unlock()

	r.cleanupOnce.Do(func() { close(r.stopCleanup) })
	if sub != nil {
		sub.Unsubscribe()
	}
	if connSub != nil {
		connSub.Unsubscribe()
	}
	r.logger.Debug("Reconciler unsubscribed", "scope", r.scope)
}

// handleEvent принимает кадры подписки: полный снимок или
// инкрементальное изменение одной записи
func (r *Reconciler) handleEvent(event api.SubscriptionEvent) {
	switch event.Type {
	case api.EventSnapshot:
		msgs := make([]models.SystemMessage, 0, len(event.Snapshot))
		for _, m := range event.Snapshot {
			msgs = append(msgs, models.MessageFromAPI(m))
		}
		r.mu.Lock()
		r.seq++
		attempt := r.seq
		r.mu.Unlock()
		r.applySnapshot(msgs, attempt)

	case api.EventInsert, api.EventUpdate, api.EventDelete:
		r.applyIncremental(event)

	default:
		r.logger.Warn("Unknown subscription event type", "type", event.Type)
	}
}

// applySnapshot монотонно замещает состояние снимком попытки attempt.
// Снимок с номером не выше уже примененного отбрасывается: завершившаяся
// позже старая сверка не должна перетереть более новое состояние.
func (r *Reconciler) applySnapshot(msgs []models.SystemMessage, attempt uint64) {
	r.mu.Lock()
	if attempt <= r.applied {
		r.mu.Unlock()
		r.logger.Debug("Dropping stale reconciliation",
			"scope", r.scope, "attempt", attempt, "applied", r.applied)
		return
	}

	known := make(map[string]struct{}, len(r.messages))
	for _, m := range r.messages {
		known[m.ID] = struct{}{}
	}

	var added []models.SystemMessage
	for _, m := range msgs {
		if _, ok := known[m.ID]; !ok {
			added = append(added, m)
		}
	}

	// сравнение по содержимому: правка текста или severity существующего
	// сообщения — тоже изменение списка, UI должен перерисоваться
	changed := len(added) > 0 || !sameMessages(r.messages, msgs)

	r.applied = attempt
	r.messages = msgs
	r.mu.Unlock()

	if changed && r.callbacks.OnChange != nil {
		r.callbacks.OnChange(added)
	}
}

// applyIncremental вкатывает одиночное изменение в авторитетный
// локальный список (производный случай для бэкендов без снимков)
func (r *Reconciler) applyIncremental(event api.SubscriptionEvent) {
	var added []models.SystemMessage
	changed := false

	r.mu.Lock()
	// инкремент тоже двигает номер примененного состояния, чтобы
	// застрявшая полная сверка не откатила его
	r.seq++
	r.applied = r.seq

	switch event.Type {
	case api.EventInsert:
		if event.Row != nil {
			m := models.MessageFromAPI(*event.Row)
			if idxByID(r.messages, m.ID) < 0 {
				r.messages = append([]models.SystemMessage{m}, r.messages...)
				added = append(added, m)
				changed = true
			}
		}
	case api.EventUpdate:
		if event.Row != nil {
			m := models.MessageFromAPI(*event.Row)
			if i := idxByID(r.messages, m.ID); i >= 0 {
				r.messages[i] = m
				changed = true
			}
		}
	case api.EventDelete:
		if i := idxByID(r.messages, event.RowID); i >= 0 {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			changed = true
		}
	}
	r.mu.Unlock()

	if changed && r.callbacks.OnChange != nil {
		r.callbacks.OnChange(added)
	}
}

// handleConnection следит за состоянием соединения. Возврат в connected
// после disconnected запускает одну принудительную сверку, закрывающую
// пропущенные push-и.
func (r *Reconciler) handleConnection(status api.ConnectionStatus) {
	r.mu.Lock()
	if r.state == StateUnsubscribed {
		r.mu.Unlock()
		return
	}

	prev := r.connState
	r.connState = status.State

	switch status.State {
	case api.ConnDisconnected, api.ConnError:
		r.state = StateDisconnected
	case api.ConnConnecting:
		if r.state == StateDisconnected {
			r.state = StateReconnecting
		}
	case api.ConnConnected:
		r.state = StateSubscribed
	}
	r.mu.Unlock()

	if r.callbacks.OnConnection != nil {
		r.callbacks.OnConnection(status)
	}

	wasDown := prev == api.ConnDisconnected || prev == api.ConnError || prev == api.ConnConnecting
	if status.State == api.ConnConnected && wasDown {
		r.logger.Info("Connection restored, forcing reconciliation", "scope", r.scope)
		go func() {
			_ = r.Refresh(context.Background()) //nolint:errcheck // ошибка уже ушла в OnError
		}()
	}
}

// cleanupLoop периодически вычищает истекшие сообщения локально,
// не дожидаясь push-а от бэкенда
func (r *Reconciler) cleanupLoop() {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.SweepExpired()
		case <-r.stopCleanup:
			return
		}
	}
}

// SweepExpired удаляет истекшие сообщения из локального состояния.
// OnChange вызывается только если активный набор действительно
// уменьшился. Возвращает число удаленных.
func (r *Reconciler) SweepExpired() int {
	r.mu.Lock()
	if r.state == StateUnsubscribed {
		r.mu.Unlock()
		return 0
	}

	active, expired := models.SplitByExpiry(r.messages, r.now())
	if len(expired) == 0 {
		r.mu.Unlock()
		return 0
	}
	r.messages = active
	r.mu.Unlock()

	r.logger.Debug("Swept expired messages", "scope", r.scope, "count", len(expired))
	if r.callbacks.OnChange != nil {
		r.callbacks.OnChange(nil)
	}
	return len(expired)
}

func (r *Reconciler) reportError(err error) {
	r.logger.Warn("Reconciliation failed", "scope", r.scope, "error", err)
	if r.callbacks.OnError != nil {
		r.callbacks.OnError(err)
	}
}

func idxByID(msgs []models.SystemMessage, id string) int {
	for i, m := range msgs {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func sameMessages(a, b []models.SystemMessage) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameMessage(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameMessage(a, b models.SystemMessage) bool {
	if a.ID != b.ID || a.TenantID != b.TenantID ||
		a.Severity != b.Severity || a.Text != b.Text ||
		!a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if a.ExpiresAt == nil || b.ExpiresAt == nil {
		return a.ExpiresAt == b.ExpiresAt
	}
	return a.ExpiresAt.Equal(*b.ExpiresAt)
}
