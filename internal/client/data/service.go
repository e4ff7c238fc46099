// Package data собирает клиентский слой данных в один явный объект:
// кэш, circuit breaker и дедупликатор создаются один раз на процесс и
// передаются зависимостям явно, без скрытых синглтонов.
package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/callboard/internal/backend"
	"github.com/iudanet/callboard/internal/client/breaker"
	"github.com/iudanet/callboard/internal/client/cache"
	"github.com/iudanet/callboard/internal/client/config"
	"github.com/iudanet/callboard/internal/client/dedup"
	"github.com/iudanet/callboard/internal/client/fetch"
	"github.com/iudanet/callboard/internal/client/reconcile"
	"github.com/iudanet/callboard/internal/client/schedule"
	"github.com/iudanet/callboard/internal/models"
	"github.com/iudanet/callboard/pkg/api"
)

// Service — контекст клиентского слоя данных для одного tenant scope
type Service struct {
	backend backend.Backend
	cache   *cache.Cache
	breaker *breaker.Breaker
	deduper *dedup.Deduper
	fetcher fetch.Service
	logger  *slog.Logger
	opts    config.Options
	scope   string
}

// NewService создает слой данных. scope — tenant id или "" для
// глобального (кросс-тенантного) доступа администратора.
func NewService(b backend.Backend, scope string, opts config.Options, logger *slog.Logger) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	pageCache := cache.New(opts.MaxCacheSize)
	cb := breaker.New(opts.FailureThreshold, opts.ResetTimeout)
	dd := dedup.New(opts.DedupMaxAge)

	return &Service{
		backend: b,
		cache:   pageCache,
		breaker: cb,
		deduper: dd,
		fetcher: fetch.NewService(b, pageCache, cb, dd, scope, fetch.StaticTTL(opts.TTL), logger),
		logger:  logger,
		opts:    opts,
		scope:   scope,
	}, nil
}

// FetchPage возвращает страницу ресурса (см. fetch.Service)
func (s *Service) FetchPage(
	ctx context.Context,
	resource string,
	page, pageSize int,
	filters map[string]string,
	opts fetch.Options,
) (*fetch.Page, error) {
	return s.fetcher.FetchPage(ctx, resource, page, pageSize, filters, opts)
}

// Invalidate сбрасывает закэшированные страницы ресурса
func (s *Service) Invalidate(resource string) {
	s.fetcher.Invalidate(resource)
}

// WatchMessages открывает живое наблюдение за системными сообщениями
// scope. Вызывающий обязан вызвать Unsubscribe у результата.
func (s *Service) WatchMessages(ctx context.Context, cb reconcile.Callbacks) (*reconcile.Reconciler, error) {
	r := reconcile.New(s.backend, s.scope, s.opts.CleanupInterval, cb, s.logger)
	if err := r.Subscribe(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// NewScheduler создает планировщик периодических обновлений,
// настроенный опциями слоя данных
func (s *Service) NewScheduler(refresh schedule.RefreshFunc) *schedule.Scheduler {
	return schedule.New(s.opts, refresh, s.logger)
}

// CreateMessage создает системное сообщение и сбрасывает кэш ресурса.
// Пустой ID заменяется новым UUID.
func (s *Service) CreateMessage(ctx context.Context, msg models.SystemMessage) (models.SystemMessage, error) {
	if msg.Text == "" {
		return models.SystemMessage{}, &backend.ValidationError{Field: "text", Reason: "cannot be empty"}
	}
	if !models.ValidSeverity(string(msg.Severity)) {
		return models.SystemMessage{}, &backend.ValidationError{Field: "severity", Reason: fmt.Sprintf("unknown severity %q", msg.Severity)}
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.TenantID == "" {
		msg.TenantID = s.scope
	}

	row := api.Row{
		"id":        msg.ID,
		"tenant_id": msg.TenantID,
		"severity":  string(msg.Severity),
		"text":      msg.Text,
	}
	if msg.ExpiresAt != nil {
		row["expires_at"] = msg.ExpiresAt.UTC().Format(time.RFC3339)
	}

	created, err := s.backend.Insert(ctx, reconcile.Resource, row)
	if err != nil {
		return models.SystemMessage{}, fmt.Errorf("create system message: %w", err)
	}

	s.fetcher.Invalidate(reconcile.Resource)
	msg.ID = created.ID()
	return msg, nil
}

// UpdateMessage изменяет поля сообщения и сбрасывает кэш ресурса
func (s *Service) UpdateMessage(ctx context.Context, id string, patch api.Row) error {
	if id == "" {
		return &backend.ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	if sev, ok := patch["severity"].(string); ok && !models.ValidSeverity(sev) {
		return &backend.ValidationError{Field: "severity", Reason: fmt.Sprintf("unknown severity %q", sev)}
	}

	if _, err := s.backend.Update(ctx, reconcile.Resource, id, patch); err != nil {
		return fmt.Errorf("update system message %s: %w", id, err)
	}
	s.fetcher.Invalidate(reconcile.Resource)
	return nil
}

// DeleteMessage удаляет сообщение и сбрасывает кэш ресурса
func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if id == "" {
		return &backend.ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	if err := s.backend.Delete(ctx, reconcile.Resource, id); err != nil {
		return fmt.Errorf("delete system message %s: %w", id, err)
	}
	s.fetcher.Invalidate(reconcile.Resource)
	return nil
}
