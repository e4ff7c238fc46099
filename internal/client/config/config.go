// Package config описывает настройки клиентского слоя данных
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Значения по умолчанию подобраны под дашборд: данные обновляются
// достаточно часто, чтобы не казаться устаревшими, но без лишних
// запросов к бэкенду.
const (
	DefaultTTL               = 30 * time.Second
	DefaultMaxCacheSize      = 256
	DefaultFailureThreshold  = 5
	DefaultResetTimeout      = 30 * time.Second
	DefaultDedupMaxAge       = 30 * time.Second
	DefaultRefreshInterval   = time.Minute
	DefaultInactiveThreshold = 5 * time.Minute
	DefaultMinInterval       = 10 * time.Second
	DefaultCleanupInterval   = time.Minute
)

// Options — настройки кэша, breaker-а, дедупликации и расписания
// обновлений. Нулевое значение непригодно: используйте Default().
type Options struct {
	// TTL — время жизни закэшированной страницы
	TTL time.Duration `validate:"gt=0"`
	// MaxCacheSize — максимум записей в кэше страниц
	MaxCacheSize int `validate:"gt=0"`
	// FailureThreshold — число последовательных отказов до открытия breaker-а
	FailureThreshold int `validate:"gt=0"`
	// ResetTimeout — пауза перед пробным вызовом открытого breaker-а
	ResetTimeout time.Duration `validate:"gt=0"`
	// DedupMaxAge — максимальный возраст присоединяемого in-flight запроса
	DedupMaxAge time.Duration `validate:"gt=0"`
	// RefreshInterval — период фонового обновления
	RefreshInterval time.Duration `validate:"gt=0"`
	// InactiveThreshold — бездействие пользователя, после которого
	// обновления приостанавливаются (при PauseOnInactive)
	InactiveThreshold time.Duration `validate:"gt=0"`
	// MinInterval — нижняя граница между фактическими обновлениями
	MinInterval time.Duration `validate:"gte=0"`
	// CleanupInterval — период локальной чистки истекших сообщений
	CleanupInterval time.Duration `validate:"gt=0"`
	// PauseOnHidden — не обновлять, пока дашборд скрыт
	PauseOnHidden bool
	// PauseOnInactive — не обновлять при бездействии пользователя
	PauseOnInactive bool
}

// Default возвращает настройки по умолчанию
func Default() Options {
	return Options{
		TTL:               DefaultTTL,
		MaxCacheSize:      DefaultMaxCacheSize,
		FailureThreshold:  DefaultFailureThreshold,
		ResetTimeout:      DefaultResetTimeout,
		DedupMaxAge:       DefaultDedupMaxAge,
		RefreshInterval:   DefaultRefreshInterval,
		InactiveThreshold: DefaultInactiveThreshold,
		MinInterval:       DefaultMinInterval,
		CleanupInterval:   DefaultCleanupInterval,
		PauseOnHidden:     true,
		PauseOnInactive:   true,
	}
}

var validate = validator.New()

// Validate проверяет согласованность настроек
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid client options: %w", err)
	}
	if o.MinInterval > o.RefreshInterval {
		return fmt.Errorf("invalid client options: MinInterval %s exceeds RefreshInterval %s",
			o.MinInterval, o.RefreshInterval)
	}
	return nil
}
