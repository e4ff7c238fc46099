// Package dedup схлопывает конкурентные одинаковые запросы в один
// сетевой вызов. Все присоединившиеся ожидающие получают один и тот же
// исход (значение или ошибку).
package dedup

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxAge ограничивает время, в течение которого к "зависшему"
// запросу можно присоединиться. После истечения выполняется новый
// независимый вызов, чтобы застрявший запрос не блокировал конвейер.
const DefaultMaxAge = 30 * time.Second

type flight struct {
	done      chan struct{}
	value     any
	err       error
	startedAt time.Time
}

// Deduper — процесс-широкий дедупликатор in-flight запросов.
// Инвариант: на один ключ существует не более одного присоединяемого
// запроса одновременно.
type Deduper struct {
	flights map[string]*flight
	now     func() time.Time
	maxAge  time.Duration
	mu      sync.Mutex
}

// New создает дедупликатор. maxAge <= 0 заменяется на DefaultMaxAge.
func New(maxAge time.Duration) *Deduper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Deduper{
		flights: make(map[string]*flight),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (d *Deduper) SetNowFunc(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// Do выполняет fn под ключом key. Если запрос с тем же ключом уже в
// полете (и моложе maxAge), fn не вызывается — возвращается его исход.
// Отмена ctx отцепляет ожидающего, не отменяя сам полет: остальные
// ожидающие получат результат.
func (d *Deduper) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	d.mu.Lock()
	if f, ok := d.flights[key]; ok && d.now().Sub(f.startedAt) < d.maxAge {
		d.mu.Unlock()
		select {
		case <-f.done:
			return f.value, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{
		done:      make(chan struct{}),
		startedAt: d.now(),
	}
	d.flights[key] = f
	d.mu.Unlock()

	f.value, f.err = fn(ctx)

	d.mu.Lock()
	// застрявший полет мог быть вытеснен новым; удаляем только свой
	if cur, ok := d.flights[key]; ok && cur == f {
		delete(d.flights, key)
	}
	d.mu.Unlock()

	close(f.done)
	return f.value, f.err
}

// InFlight возвращает число запросов в полете (для тестов и статуса)
func (d *Deduper) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.flights)
}
