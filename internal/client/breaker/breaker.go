// Package breaker реализует circuit breaker на один логический endpoint
// ("list calls", "list system_messages"...). Открытый breaker отклоняет
// вызовы с типизированной *backend.CircuitOpenError без обращения к сети.
package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/iudanet/callboard/internal/backend"
)

// State представляет состояние breaker-а для одного endpoint-а
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Значения по умолчанию
const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 30 * time.Second
)

type endpointState struct {
	lastFailure time.Time
	state       State
	failures    int
	trialActive bool // в HalfOpen пропускается ровно один пробный вызов
}

// Breaker хранит независимое состояние на каждый endpoint.
// Создается один на процесс и передается явно (без синглтонов).
type Breaker struct {
	endpoints        map[string]*endpointState
	now              func() time.Time
	failureThreshold int
	resetTimeout     time.Duration
	mu               sync.Mutex
}

// New создает breaker. Неположительные параметры заменяются значениями
// по умолчанию.
func New(failureThreshold int, resetTimeout time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if resetTimeout <= 0 {
		resetTimeout = DefaultResetTimeout
	}
	return &Breaker{
		endpoints:        make(map[string]*endpointState),
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (b *Breaker) SetNowFunc(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// State возвращает текущее состояние endpoint-а (с учетом истекшего
// resetTimeout, переводящего Open в HalfOpen)
func (b *Breaker) State(endpoint string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	es := b.endpoints[endpoint]
	if es == nil {
		return StateClosed
	}
	if es.state == StateOpen && b.now().Sub(es.lastFailure) >= b.resetTimeout {
		return StateHalfOpen
	}
	return es.state
}

// Allow решает, можно ли выполнять вызов. Возвращает
// *backend.CircuitOpenError, если breaker открыт. В HalfOpen
// пропускается только один пробный вызов; остальные отклоняются.
func (b *Breaker) Allow(endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	es := b.endpoints[endpoint]
	if es == nil || es.state == StateClosed {
		return nil
	}

	now := b.now()
	retryAt := es.lastFailure.Add(b.resetTimeout)

	if es.state == StateOpen {
		if now.Before(retryAt) {
			return &backend.CircuitOpenError{Endpoint: endpoint, RetryAt: retryAt}
		}
		// resetTimeout истек: переходим в HalfOpen и пропускаем пробу
		es.state = StateHalfOpen
		es.trialActive = true
		return nil
	}

	// HalfOpen: одновременно допускается ровно одна проба
	if es.trialActive {
		return &backend.CircuitOpenError{Endpoint: endpoint, RetryAt: retryAt}
	}
	es.trialActive = true
	return nil
}

// RecordSuccess фиксирует успешный вызов: счетчик отказов сбрасывается,
// endpoint возвращается в Closed
func (b *Breaker) RecordSuccess(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	es := b.endpoints[endpoint]
	if es == nil {
		return
	}
	es.state = StateClosed
	es.failures = 0
	es.trialActive = false
}

// RecordFailure фиксирует отказ. После failureThreshold последовательных
// отказов (или неудачной пробы в HalfOpen) endpoint открывается и таймер
// перезапускается.
func (b *Breaker) RecordFailure(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	es := b.endpoints[endpoint]
	if es == nil {
		es = &endpointState{state: StateClosed}
		b.endpoints[endpoint] = es
	}

	es.failures++
	es.lastFailure = b.now()

	if es.state == StateHalfOpen {
		// неудачная проба: снова Open, таймер пошел заново
		es.state = StateOpen
		es.trialActive = false
		return
	}
	if es.failures >= b.failureThreshold {
		es.state = StateOpen
	}
}

// Do оборачивает вызов: Allow → fn → RecordSuccess/RecordFailure.
// NotFound и Validation отказом не считаются (см. backend.CountsAsFailure).
func (b *Breaker) Do(ctx context.Context, endpoint string, fn func(ctx context.Context) error) error {
	if err := b.Allow(endpoint); err != nil {
		return err
	}

	err := fn(ctx)
	if backend.CountsAsFailure(err) {
		b.RecordFailure(endpoint)
		return err
	}
	b.RecordSuccess(endpoint)
	return err
}
