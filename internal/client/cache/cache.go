// Package cache реализует in-memory TTL-кэш результатов постраничных
// запросов. Кэш живет только в памяти процесса и не переживает рестарт.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxSize ограничивает кэш по числу записей
const DefaultMaxSize = 256

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Cache — потокобезопасный TTL-кэш с FIFO-вытеснением при переполнении.
// Ключи — фингерпринты запросов (см. пакет fetch).
type Cache struct {
	entries map[string]*entry
	now     func() time.Time
	order   []string // порядок вставки для FIFO-вытеснения
	maxSize int
	mu      sync.Mutex
}

// New создает кэш с ограничением maxSize записей.
// maxSize <= 0 заменяется на DefaultMaxSize.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		entries: make(map[string]*entry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (c *Cache) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get возвращает значение по ключу. Истекшая запись удаляется и
// считается промахом.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.remove(key)
		return nil, false
	}
	return e.value, true
}

// Set сохраняет значение с заданным TTL. При переполнении вытесняется
// самая старая по вставке запись.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		// перезапись не меняет позицию в порядке вставки
		c.entries[key] = &entry{value: value, storedAt: c.now(), ttl: ttl}
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		c.remove(c.order[0])
	}

	c.entries[key] = &entry{value: value, storedAt: c.now(), ttl: ttl}
	c.order = append(c.order, key)
}

// Invalidate удаляет запись по точному ключу
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// InvalidatePrefix удаляет все записи, ключ которых начинается с prefix.
// Используется после мутаций: сбрасываются все страницы ресурса.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(key)
		}
	}
}

// EvictExpired удаляет все истекшие записи и возвращает их количество
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for key, e := range c.entries {
		if e.expired(now) {
			c.remove(key)
			evicted++
		}
	}
	return evicted
}

// Len возвращает текущее число записей (включая еще не вычищенные истекшие)
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove удаляет запись и ее позицию в порядке вставки.
// Вызывается только под c.mu.
func (c *Cache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
