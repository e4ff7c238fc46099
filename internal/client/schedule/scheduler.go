// Package schedule решает, когда выполнять периодическое обновление
// данных дашборда: скрытая вкладка, бездействие пользователя и offline
// приостанавливают таймер, возврат активности возобновляет его.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/callboard/internal/client/config"
)

// RefreshFunc выполняет одно обновление данных
type RefreshFunc func(ctx context.Context)

// Scheduler управляет периодическим обновлением с учетом видимости
// страницы, активности пользователя и связности.
type Scheduler struct {
	refresh      RefreshFunc
	logger       *slog.Logger
	now          func() time.Time
	stop         chan struct{}
	lastActivity time.Time
	lastFetch    time.Time
	opts         config.Options
	visible      bool
	online       bool
	started      bool
	mu           sync.Mutex
	stopOnce     sync.Once
}

// New создает планировщик; refresh вызывается из фонового тика и из
// событий возобновления
func New(opts config.Options, refresh RefreshFunc, logger *slog.Logger) *Scheduler {
	now := time.Now()
	return &Scheduler{
		opts:         opts,
		refresh:      refresh,
		logger:       logger,
		now:          time.Now,
		stop:         make(chan struct{}),
		visible:      true,
		online:       true,
		lastActivity: now,
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (s *Scheduler) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lastActivity = now()
}

// Start запускает фоновый тик с периодом RefreshInterval.
// Освобождение — через Stop (acquire/release, как у подписок).
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.loop(ctx)
}

// Stop останавливает фоновый тик. Идемпотентен.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.maybeRefresh(ctx, false)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SetVisible сообщает о смене видимости страницы. Возврат к видимой
// странице — событие возобновления.
func (s *Scheduler) SetVisible(ctx context.Context, visible bool) {
	s.mu.Lock()
	was := s.visible
	s.visible = visible
	s.mu.Unlock()

	if visible && !was {
		s.maybeRefresh(ctx, true)
	}
}

// SetOnline сообщает о смене связности. Переход в online — событие
// возобновления.
func (s *Scheduler) SetOnline(ctx context.Context, online bool) {
	s.mu.Lock()
	was := s.online
	s.online = online
	s.mu.Unlock()

	if online && !was {
		s.maybeRefresh(ctx, true)
	}
}

// RecordActivity фиксирует действие пользователя. Возврат из
// бездействия — событие возобновления.
func (s *Scheduler) RecordActivity(ctx context.Context) {
	s.mu.Lock()
	wasInactive := s.inactiveLocked()
	s.lastActivity = s.now()
	s.mu.Unlock()

	if wasInactive {
		s.maybeRefresh(ctx, true)
	}
}

// ShouldRun сообщает, допустимо ли обновление прямо сейчас
func (s *Scheduler) ShouldRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eligibleLocked()
}

func (s *Scheduler) eligibleLocked() bool {
	if !s.online {
		return false
	}
	if s.opts.PauseOnHidden && !s.visible {
		return false
	}
	if s.opts.PauseOnInactive && s.inactiveLocked() {
		return false
	}
	return true
}

func (s *Scheduler) inactiveLocked() bool {
	return s.now().Sub(s.lastActivity) >= s.opts.InactiveThreshold
}

// maybeRefresh выполняет обновление, если условия позволяют.
// resume-события дополнительно ограничены полом MinInterval: сколько бы
// событий возобновления ни пришло подряд, чаще MinInterval не обновляем.
func (s *Scheduler) maybeRefresh(ctx context.Context, resume bool) {
	s.mu.Lock()
	if !s.eligibleLocked() {
		s.mu.Unlock()
		return
	}
	now := s.now()
	if now.Sub(s.lastFetch) < s.opts.MinInterval {
		s.mu.Unlock()
		s.logger.Debug("Refresh suppressed by min interval", "resume", resume)
		return
	}
	s.lastFetch = now
	s.mu.Unlock()

	s.refresh(ctx)
}
