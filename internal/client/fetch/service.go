// Package fetch реализует постраничную выборку ресурсов дашборда:
// кэш → circuit breaker → дедупликация → удаленный бэкенд.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/internal/client/breaker"
	"github.com/iudanet/callboard/internal/client/cache"
	"github.com/iudanet/callboard/internal/client/dedup"
	"github.com/iudanet/callboard/internal/validation"
	"github.com/iudanet/callboard/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Page представляет одну страницу результата
type Page struct {
	Items      []api.Row
	TotalCount int
	Page       int // фактически запрошенная страница (после клампа page < 1)
	TotalPages int
	HasMore    bool
}

// Options управляет одним вызовом FetchPage
type Options struct {
	// ForceRefresh пропускает кэш и всегда идет в бэкенд
	ForceRefresh bool
}

// Service определяет интерфейс постраничной выборки
type Service interface {
	// FetchPage возвращает страницу page (1-based) ресурса resource
	// размером pageSize с фильтрами filters
	FetchPage(ctx context.Context, resource string, page, pageSize int, filters map[string]string, opts Options) (*Page, error)

	// Invalidate сбрасывает закэшированные страницы ресурса в scope.
	// Вызывается после мутаций.
	Invalidate(resource string)
}

// TTLPolicy возвращает TTL кэша для ресурса. Позволяет держать
// быстро меняющиеся ресурсы (calls) свежее медленных (billing_summaries).
type TTLPolicy interface {
	TTLFor(resource string) time.Duration
}

// StaticTTL — одинаковый TTL для всех ресурсов
type StaticTTL time.Duration

// TTLFor возвращает сам TTL независимо от ресурса
func (t StaticTTL) TTLFor(string) time.Duration { return time.Duration(t) }

type service struct {
	backend backend.Backend
	cache   *cache.Cache
	breaker *breaker.Breaker
	deduper *dedup.Deduper
	ttl     TTLPolicy
	logger  *slog.Logger
	scope   string // tenant id или "" для глобального доступа
}

// NewService создает сервис выборки. Все зависимости передаются явно:
// cache/breaker/deduper — общие для процесса объекты (см. client/data).
func NewService(
	b backend.Backend,
	pageCache *cache.Cache,
	cb *breaker.Breaker,
	dd *dedup.Deduper,
	scope string,
	ttl TTLPolicy,
	logger *slog.Logger,
) Service {
	return &service{
		backend: b,
		cache:   pageCache,
		breaker: cb,
		deduper: dd,
		scope:   scope,
		ttl:     ttl,
		logger:  logger,
	}
}

// FetchPage выполняет алгоритм: фингерпринт → кэш → breaker → дедуп →
// бэкенд → кэш. Ошибки валидации отклоняются до сетевого вызова.
func (s *service) FetchPage(
	ctx context.Context,
	resource string,
	page, pageSize int,
	filters map[string]string,
	opts Options,
) (*Page, error) {
	if err := validateRequest(resource, pageSize, filters); err != nil {
		return nil, err
	}
	if page < 1 {
		// отрицательные и нулевые страницы клампятся к первой
		page = 1
	}

	fp := Fingerprint(resource, s.scope, page, pageSize, filters)

	if !opts.ForceRefresh {
		if v, ok := s.cache.Get(fp); ok {
			s.logger.Debug("Page served from cache", "fingerprint", fp)
			return v.(*Page), nil
		}
	}

	if err := s.breaker.Allow(resource); err != nil {
		s.logger.Warn("Circuit open, request rejected", "resource", resource)
		return nil, err
	}

	// исход breaker-а фиксируется внутри полета: N присоединившихся
	// ожидающих не превращают один отказ бэкенда в N отказов
	result, err := s.deduper.Do(ctx, fp, func(ctx context.Context) (any, error) {
		p, qErr := s.queryPage(ctx, resource, page, pageSize, filters)
		if qErr != nil {
			if backend.CountsAsFailure(qErr) {
				s.breaker.RecordFailure(resource)
			}
			return nil, qErr
		}
		s.breaker.RecordSuccess(resource)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", resource, page, err)
	}

	p := result.(*Page)
	s.cache.Set(fp, p, s.ttl.TTLFor(resource))
	return p, nil
}

// Invalidate сбрасывает все страницы ресурса в текущем scope
func (s *service) Invalidate(resource string) {
	s.cache.InvalidatePrefix(ResourcePrefix(resource, s.scope))
}

// queryPage выполняет сетевой запрос окна [offset, offset+pageSize)
func (s *service) queryPage(
	ctx context.Context,
	resource string,
	page, pageSize int,
	filters map[string]string,
) (*Page, error) {
	offset := (page - 1) * pageSize

	merged := make(map[string]string, len(filters)+1)
	for k, v := range filters {
		merged[k] = v
	}
	if s.scope != "" {
		merged["tenant_id"] = s.scope
	}

	res, err := s.backend.Query(ctx, resource, backend.QueryOptions{
		Filters:    merged,
		RangeStart: offset,
		RangeEnd:   offset + pageSize,
	})
	if err != nil {
		return nil, err
	}

	totalPages := (res.TotalCount + pageSize - 1) / pageSize

	return &Page{
		Items:      res.Rows,
		TotalCount: res.TotalCount,
		Page:       page,
		TotalPages: totalPages,
		HasMore:    offset+len(res.Rows) < res.TotalCount,
	}, nil
}

func validateRequest(resource string, pageSize int, filters map[string]string) error {
	if err := validation.ValidateResource(resource); err != nil {
		return &backend.ValidationError{Field: "resource", Reason: err.Error()}
	}
	if pageSize <= 0 {
		return &backend.ValidationError{Field: "pageSize", Reason: "must be positive"}
	}
	if err := validation.ValidateFilters(filters); err != nil {
		return &backend.ValidationError{Field: "filters", Reason: err.Error()}
	}
	return nil
}

// NearestPage возвращает ближайшую валидную страницу для запрошенной.
// UI использует ее, чтобы перезапросить данные, когда после удаления
// записей текущая страница оказалась за концом списка.
func NearestPage(requested, totalCount, pageSize int) int {
	if requested < 1 {
		return 1
	}
	if pageSize <= 0 || totalCount <= 0 {
		return 1
	}
	totalPages := (totalCount + pageSize - 1) / pageSize
	if requested > totalPages {
		return totalPages
	}
	return requested
}
