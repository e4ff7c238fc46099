// Package backend определяет контракт удаленного бэкенда дашборда:
// постраничные выборки, мутации и realtime-подписки поверх hosted
// реляционного хранилища. Конкретная реализация — в подпакете rest.
package backend

import (
	"context"

	"github.com/iudanet/callboard/pkg/api"
)

//go:generate moq -out backend_mock.go . Backend

// QueryOptions описывает параметры постраничного запроса.
// Filters — фильтры на равенство (tenant_id, status и т.д.);
// RangeStart/RangeEnd задают полуинтервал строк [RangeStart, RangeEnd).
type QueryOptions struct {
	Filters    map[string]string
	OrderBy    string
	Descending bool
	RangeStart int
	RangeEnd   int
}

// QueryResult представляет результат постраничного запроса
type QueryResult struct {
	Rows       []api.Row
	TotalCount int
}

// Subscription представляет активную подписку; Unsubscribe идемпотентен
type Subscription interface {
	Unsubscribe()
}

// EventHandler принимает кадры realtime-подписки
type EventHandler func(event api.SubscriptionEvent)

// ConnectionHandler принимает смены состояния realtime-соединения
type ConnectionHandler func(status api.ConnectionStatus)

// Backend определяет интерфейс удаленного бэкенда дашборда
type Backend interface {
	// Query выполняет постраничную выборку ресурса с фильтрами
	Query(ctx context.Context, resource string, opts QueryOptions) (*QueryResult, error)

	// Insert создает запись ресурса
	Insert(ctx context.Context, resource string, row api.Row) (api.Row, error)

	// Update изменяет запись по id; patch содержит только меняемые поля
	Update(ctx context.Context, resource string, id string, patch api.Row) (api.Row, error)

	// Delete удаляет запись по id
	Delete(ctx context.Context, resource string, id string) error

	// Subscribe открывает realtime-подписку на ресурс в пределах scope
	// (tenant id или "" для глобальной области)
	Subscribe(ctx context.Context, resource, scope string, onEvent EventHandler) (Subscription, error)

	// ConnectionStatus возвращает текущее состояние realtime-соединения
	ConnectionStatus() api.ConnectionStatus

	// OnConnectionChange регистрирует обработчик смен состояния соединения
	OnConnectionChange(cb ConnectionHandler) Subscription
}
